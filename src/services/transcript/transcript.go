// Package transcript groups a student's results into the academic record
// shown on the transcript page and printed as the official record.
package transcript

import (
	"sort"
	"strconv"

	"github.com/Dizey-pro/Students-results/src/grading"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/aggregate"
)

const EmptyMessage = "No academic records found for this student ID."

type Row struct {
	Subject string `json:"subject"`
	Score   int    `json:"score"`
	Grade   string `json:"grade"`
	Tone    string `json:"tone"`
	Remark  string `json:"remark"`
}

type Term struct {
	Term        string  `json:"term"`
	Average     float64 `json:"average"`
	AverageText string  `json:"averageText"`
	Rows        []Row   `json:"rows"`
}

type Year struct {
	Year  string `json:"year"`
	Terms []Term `json:"terms"`
}

type Transcript struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName,omitempty"`
	Years       []Year `json:"years"`
}

// Empty reports the "no records" state.
func (t Transcript) Empty() bool {
	return len(t.Years) == 0
}

// Build groups studentID's results by year (newest first) and term.
// Rows inside a term keep collection order.
func Build(results []models.Result, studentID string) Transcript {
	t := Transcript{StudentID: studentID, Years: []Year{}}

	byYear := make(map[string]map[string][]models.Result)
	for _, r := range aggregate.ForStudent(results, studentID) {
		if t.StudentName == "" {
			t.StudentName = r.StudentName
		}
		terms, ok := byYear[r.Year]
		if !ok {
			terms = make(map[string][]models.Result)
			byYear[r.Year] = terms
		}
		terms[r.Term] = append(terms[r.Term], r)
	}

	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return yearAfter(years[i], years[j]) })

	for _, y := range years {
		terms := make([]string, 0, len(byYear[y]))
		for term := range byYear[y] {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		year := Year{Year: y, Terms: make([]Term, 0, len(terms))}
		for _, term := range terms {
			year.Terms = append(year.Terms, buildTerm(term, byYear[y][term]))
		}
		t.Years = append(t.Years, year)
	}
	return t
}

func buildTerm(term string, results []models.Result) Term {
	avg, ok := aggregate.Average(results)
	out := Term{
		Term:        term,
		Average:     avg,
		AverageText: aggregate.FormatAverage(avg, ok),
		Rows:        make([]Row, 0, len(results)),
	}
	for _, r := range results {
		grade := r.Grade
		if grade == "" {
			grade = grading.Grade(r.Score)
		}
		out.Rows = append(out.Rows, Row{
			Subject: r.Subject,
			Score:   r.Score,
			Grade:   grade,
			Tone:    grading.Tone(grade),
			Remark:  grading.Remark(r.Score),
		})
	}
	return out
}

// yearAfter orders numeric years descending; non numeric years sort last.
func yearAfter(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai > bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a > b
}
