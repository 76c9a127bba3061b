// Package students manages the roster and the student directory.
package students

import (
	"context"
	"sort"
	"strings"

	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllTab selects every student in the directory.
const AllTab = "All"

var ErrDuplicateStudentID = errors.New("a student with this ID already exists")

// Source returns the current student snapshot. state.State satisfies it.
type Source interface {
	Students() []models.Student
}

type Service struct {
	store  database.Store
	source Source
}

func NewService(store database.Store, source Source) *Service {
	return &Service{store: store, source: source}
}

func normalize(st models.Student) models.Student {
	st.StudentID = strings.TrimSpace(st.StudentID)
	st.Name = strings.TrimSpace(st.Name)
	st.Email = strings.TrimSpace(st.Email)
	return st
}

// taken reports whether another student (not id) already uses studentID.
func (s *Service) taken(studentID, id string) bool {
	for _, st := range s.source.Students() {
		if st.ID != id && strings.EqualFold(st.StudentID, studentID) {
			return true
		}
	}
	return false
}

// Create adds st to the roster. st must already be validated.
func (s *Service) Create(ctx context.Context, st models.Student) (*models.Student, error) {
	st = normalize(st)
	st.ID = ""
	if s.taken(st.StudentID, "") {
		return nil, ErrDuplicateStudentID
	}

	doc, err := database.ToDocument(st)
	if err != nil {
		return nil, err
	}
	delete(doc, "createdAt")
	id, err := s.store.Create(ctx, database.StudentsCollection, doc)
	if err != nil {
		return nil, errors.Wrap(err, "create student")
	}
	st.ID = id
	return &st, nil
}

// Update overwrites the editable fields of student id. Results already
// stored keep the student name they were written with.
func (s *Service) Update(ctx context.Context, id string, st models.Student) (*models.Student, error) {
	st = normalize(st)
	if s.taken(st.StudentID, id) {
		return nil, ErrDuplicateStudentID
	}

	err := s.store.Update(ctx, database.StudentsCollection, id, bson.M{
		"studentId": st.StudentID,
		"name":      st.Name,
		"level":     st.Level,
		"className": st.ClassName,
		"email":     st.Email,
	})
	if err != nil {
		return nil, errors.Wrap(err, "update student")
	}
	st.ID = id
	return &st, nil
}

// FindByStudentID looks a student up in the current snapshot.
func (s *Service) FindByStudentID(studentID string) (models.Student, bool) {
	for _, st := range s.source.Students() {
		if st.StudentID == studentID {
			return st, true
		}
	}
	return models.Student{}, false
}

// ClassTabs lists the directory tabs: All, then every class in catalog order.
func ClassTabs() []string {
	tabs := []string{AllTab}
	for _, level := range models.Levels {
		for _, cls := range models.ClassesByLevel[level] {
			tabs = append(tabs, level+" - "+cls)
		}
	}
	return tabs
}

// Directory filters students by a case insensitive search on name or
// studentId and by tab, sorted by name.
func Directory(students []models.Student, search, tab string) []models.Student {
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Student, 0)
	for _, st := range students {
		if q != "" &&
			!strings.Contains(strings.ToLower(st.Name), q) &&
			!strings.Contains(strings.ToLower(st.StudentID), q) {
			continue
		}
		if tab != "" && tab != AllTab && st.Tab() != tab {
			continue
		}
		out = append(out, st)
	}

	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
