package aggregate

import (
	"testing"
	"time"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/stretchr/testify/assert"
)

func res(studentID, subject string, score int) models.Result {
	return models.Result{StudentID: studentID, Subject: subject, Score: score}
}

func TestGPA(t *testing.T) {
	results := []models.Result{
		res("ST-1", "Mathematics", 95), // 4.0
		res("ST-1", "English", 72),     // 2.0
		res("ST-1", "Shona", 40),       // 0.0
		res("ST-2", "Mathematics", 99),
	}
	assert.InDelta(t, 2.0, GPA(results, "ST-1"), 1e-9)
	assert.Equal(t, "2.00", FormatGPA(GPA(results, "ST-1")))
}

func TestGPAEmptyIsZero(t *testing.T) {
	gpa := GPA(nil, "ST-1")
	assert.Equal(t, 0.0, gpa)
	assert.Equal(t, "0.00", FormatGPA(gpa))
	assert.Equal(t, "0.00", FormatGPA(GPA([]models.Result{res("ST-2", "FRS", 90)}, "ST-1")))
}

func TestAverage(t *testing.T) {
	avg, ok := Average([]models.Result{{Score: 80}, {Score: 60}, {Score: 100}})
	assert.True(t, ok)
	assert.Equal(t, 80.0, avg)
	assert.Equal(t, "80.0", FormatAverage(avg, ok))

	assert.Equal(t, "72.0", FormatAverage(Average([]models.Result{{Score: 70}, {Score: 75}, {Score: 71}})))
	assert.Equal(t, "66.5", FormatAverage(Average([]models.Result{{Score: 66}, {Score: 67}})))
}

func TestAverageEmptyIsNoData(t *testing.T) {
	avg, ok := Average(nil)
	assert.False(t, ok)
	assert.Equal(t, "0", FormatAverage(avg, ok))

	avg, ok = Average([]models.Result{{Score: 0}})
	assert.True(t, ok, "a real zero average is data")
	assert.Equal(t, "0.0", FormatAverage(avg, ok))
}

func TestClassStats(t *testing.T) {
	roster := []models.Student{{StudentID: "a"}, {StudentID: "b"}, {StudentID: "c"}, {StudentID: "d"}}
	marks := map[string]string{"a": "45", "b": "90", "c": "", "d": "x", "z": "100"}

	s := ClassStats(roster, marks)
	assert.Equal(t, Stats{Count: 2, Average: 67.5, Min: 45, Max: 90, HasData: true}, s)
}

func TestClassStatsNoData(t *testing.T) {
	s := ClassStats([]models.Student{{StudentID: "a"}}, map[string]string{"a": " "})
	assert.False(t, s.HasData)
	assert.Zero(t, s.Count)

	zero := ClassStats([]models.Student{{StudentID: "a"}}, map[string]string{"a": "0"})
	assert.True(t, zero.HasData)
	assert.Equal(t, 0.0, zero.Average)
}

func TestRecentNewestFirst(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []models.Result{
		{StudentID: "ST-1", Subject: "old", CreatedAt: t0},
		{StudentID: "ST-1", Subject: "new", CreatedAt: t0.Add(48 * time.Hour)},
		{StudentID: "ST-2", Subject: "other", CreatedAt: t0.Add(72 * time.Hour)},
		{StudentID: "ST-1", Subject: "mid", CreatedAt: t0.Add(24 * time.Hour)},
	}
	recent := Recent(results, "ST-1", 2)
	if assert.Len(t, recent, 2) {
		assert.Equal(t, "new", recent[0].Subject)
		assert.Equal(t, "mid", recent[1].Subject)
	}
	assert.Len(t, Recent(results, "ST-1", 10), 3)
}

func TestWeakest(t *testing.T) {
	results := []models.Result{
		res("ST-1", "Mathematics", 40),
		res("ST-1", "Mathematics", 60),
		res("ST-1", "English", 45),
		res("ST-1", "History", 88),
		res("ST-2", "English", 10),
	}
	weak := Weakest(results, "ST-1", 2)
	assert.Equal(t, []SubjectSummary{
		{Subject: "English", Average: 45, Count: 1},
		{Subject: "Mathematics", Average: 50, Count: 2},
	}, weak)
	assert.Empty(t, Weakest(results, "nobody", 3))
}

func TestSummarize(t *testing.T) {
	o := Summarize([]models.Result{{}, {}}, []models.Student{{}})
	assert.Equal(t, Overview{TotalStudents: 1, TotalResults: 2}, o)
}
