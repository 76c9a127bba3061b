// Package aggregate derives GPA, averages and class statistics from results.
// Nothing here is cached: every figure is recomputed from the snapshot given.
package aggregate

import (
	"sort"
	"strconv"

	"github.com/Dizey-pro/Students-results/src/grading"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/reconcile"
	"github.com/montanaflynn/stats"
)

// ForStudent keeps the results of studentID in collection order.
func ForStudent(results []models.Result, studentID string) []models.Result {
	mine := make([]models.Result, 0)
	for _, r := range results {
		if r.StudentID == studentID {
			mine = append(mine, r)
		}
	}
	return mine
}

// GPA is the mean GPA point of studentID's results, 0 when there are none.
func GPA(results []models.Result, studentID string) float64 {
	mine := ForStudent(results, studentID)
	points := make(stats.Float64Data, 0, len(mine))
	for _, r := range mine {
		points = append(points, grading.GPAPoint(r.Score))
	}
	gpa, err := stats.Mean(points)
	if err != nil {
		return 0
	}
	return gpa
}

// FormatGPA renders a GPA with two decimals.
func FormatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', 2, 64)
}

// Average is the mean score of results rounded to one decimal. ok is false
// when results is empty, which is not the same as an average of zero.
func Average(results []models.Result) (avg float64, ok bool) {
	scores := make(stats.Float64Data, 0, len(results))
	for _, r := range results {
		scores = append(scores, float64(r.Score))
	}
	mean, err := stats.Mean(scores)
	if err != nil {
		return 0, false
	}
	return round1(mean), true
}

// FormatAverage renders one decimal, or "0" when there was nothing to average.
func FormatAverage(avg float64, ok bool) string {
	if !ok {
		return "0"
	}
	return strconv.FormatFloat(avg, 'f', 1, 64)
}

// Stats summarises the marks entered for one class. HasData is false when no
// usable mark was entered; the other fields are then meaningless.
type Stats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	HasData bool    `json:"hasData"`
}

// ClassStats summarises the marks entered for roster, saved or not. Marks
// that would be skipped on save are ignored here too.
func ClassStats(roster []models.Student, marks map[string]string) Stats {
	scores := make(stats.Float64Data, 0, len(roster))
	for _, s := range roster {
		score, reason := reconcile.ParseMark(marks[s.StudentID])
		if reason != "" {
			continue
		}
		scores = append(scores, float64(score))
	}
	if len(scores) == 0 {
		return Stats{}
	}

	avg, _ := stats.Mean(scores)
	lo, _ := stats.Min(scores)
	hi, _ := stats.Max(scores)
	return Stats{
		Count:   len(scores),
		Average: round1(avg),
		Min:     int(lo),
		Max:     int(hi),
		HasData: true,
	}
}

// Recent returns up to n of studentID's results, newest first.
func Recent(results []models.Result, studentID string, n int) []models.Result {
	mine := ForStudent(results, studentID)
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	if n >= 0 && len(mine) > n {
		mine = mine[:n]
	}
	return mine
}

// SubjectSummary is the average score of one subject across terms.
type SubjectSummary struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Weakest returns up to n of studentID's subjects with the lowest average
// score, weakest first.
func Weakest(results []models.Result, studentID string, n int) []SubjectSummary {
	bySubject := make(map[string][]models.Result)
	for _, r := range ForStudent(results, studentID) {
		bySubject[r.Subject] = append(bySubject[r.Subject], r)
	}

	out := make([]SubjectSummary, 0, len(bySubject))
	for subject, rs := range bySubject {
		avg, _ := Average(rs)
		out = append(out, SubjectSummary{Subject: subject, Average: avg, Count: len(rs)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average < out[j].Average
		}
		return out[i].Subject < out[j].Subject
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Overview holds the admin dashboard counters.
type Overview struct {
	TotalStudents int `json:"totalStudents"`
	TotalResults  int `json:"totalResults"`
}

func Summarize(results []models.Result, students []models.Student) Overview {
	return Overview{TotalStudents: len(students), TotalResults: len(results)}
}

func round1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil {
		return v
	}
	return r
}
