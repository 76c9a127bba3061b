// Package reconcile turns a teacher's bulk mark entry into the minimal set of
// result writes and applies them.
package reconcile

import (
	"sort"
	"strconv"

	"github.com/Dizey-pro/Students-results/src/grading"
	"github.com/Dizey-pro/Students-results/src/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
)

// Operation is one write against the results collection. ResultID is set for
// updates only.
type Operation struct {
	Kind     OpKind
	ResultID string
	Payload  models.ResultPayload
}

// Skip records a mark that was entered but could not be used.
type Skip struct {
	StudentID string
	Mark      string
	Reason    SkipReason
}

// Plan is the outcome of reconciling one save.
type Plan struct {
	Context   models.ResultContext
	Ops       []Operation
	Unchanged int
	Skipped   []Skip
}

func (p Plan) count(kind OpKind) int {
	n := 0
	for _, op := range p.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (p Plan) Creates() int { return p.count(OpCreate) }
func (p Plan) Updates() int { return p.count(OpUpdate) }

// Roster returns the students of one class ordered by name, then studentId.
func Roster(students []models.Student, level, className string) []models.Student {
	roster := make([]models.Student, 0)
	for _, s := range students {
		if s.Level == level && s.ClassName == className {
			roster = append(roster, s)
		}
	}
	col := collate.New(language.English)
	sort.SliceStable(roster, func(i, j int) bool {
		if c := col.CompareString(roster[i].Name, roster[j].Name); c != 0 {
			return c < 0
		}
		return col.CompareString(roster[i].StudentID, roster[j].StudentID) < 0
	})
	return roster
}

// NewPayload builds the write payload of a result. The grade is always
// derived from score here; there is no other way to set it.
func NewPayload(student models.Student, rc models.ResultContext, score int) models.ResultPayload {
	return models.ResultPayload{
		StudentID:   student.StudentID,
		StudentName: student.Name,
		Level:       rc.Level,
		ClassName:   rc.ClassName,
		Subject:     rc.Subject,
		Term:        rc.Term,
		Year:        rc.Year,
		Score:       score,
		Grade:       grading.Grade(score),
	}
}

// Index maps each identity key to its stored result. When the store holds
// duplicates the first in collection order wins.
func Index(results []models.Result) map[models.ResultKey]models.Result {
	idx := make(map[models.ResultKey]models.Result, len(results))
	for _, r := range results {
		k := r.Key()
		if _, dup := idx[k]; !dup {
			idx[k] = r
		}
	}
	return idx
}

// Reconcile diffs the entered marks of rc against existing.
//
// Blank marks are ignored and leave stored results alone. Invalid marks are
// recorded in Skipped. A student without a stored result gets a create; one
// whose stored score differs gets an update carrying the full payload; an
// equal score produces nothing.
func Reconcile(rc models.ResultContext, roster []models.Student, marks map[string]string, existing []models.Result) Plan {
	plan := Plan{Context: rc}
	idx := Index(existing)

	for _, student := range roster {
		raw := marks[student.StudentID]
		score, reason := ParseMark(raw)
		switch reason {
		case "":
		case SkipBlank:
			continue
		default:
			plan.Skipped = append(plan.Skipped, Skip{StudentID: student.StudentID, Mark: raw, Reason: reason})
			continue
		}

		payload := NewPayload(student, rc, score)
		stored, found := idx[rc.Key(student.StudentID)]
		switch {
		case !found:
			plan.Ops = append(plan.Ops, Operation{Kind: OpCreate, Payload: payload})
		case stored.Score != score:
			plan.Ops = append(plan.Ops, Operation{Kind: OpUpdate, ResultID: stored.ID, Payload: payload})
		default:
			plan.Unchanged++
		}
	}
	return plan
}

// ContextMarks returns the stored score of every student in rc, keyed by
// studentId, ready to prefill the entry grid.
func ContextMarks(results []models.Result, rc models.ResultContext) map[string]string {
	marks := make(map[string]string)
	for _, r := range results {
		if rc.Matches(r) {
			marks[r.StudentID] = strconv.Itoa(r.Score)
		}
	}
	return marks
}
