// Package grading maps scores to letter grades, GPA points and remarks.
// Every stored grade and every displayed grade comes from here.
package grading

// PassMark is the lowest passing score.
const PassMark = 50

type band struct {
	min   int
	grade string
	point float64
}

// bands are ordered by descending lower bound.
var bands = []band{
	{90, "A+", 4.0},
	{80, "A", 3.0},
	{70, "B", 2.0},
	{60, "C", 1.0},
	{50, "D", 0.0},
}

// Grade returns the letter grade of score. Bounds are inclusive.
func Grade(score int) string {
	for _, b := range bands {
		if score >= b.min {
			return b.grade
		}
	}
	return "F"
}

// GPAPoint returns the 0.0-4.0 point of score.
func GPAPoint(score int) float64 {
	for _, b := range bands {
		if score >= b.min {
			return b.point
		}
	}
	return 0.0
}

// Remark is the transcript remark of score.
func Remark(score int) string {
	if score >= PassMark {
		return "Pass"
	}
	return "Fail"
}

// Tone is the display colour band of a letter grade.
func Tone(grade string) string {
	if grade == "" {
		return "red"
	}
	switch grade[0] {
	case 'A':
		return "green"
	case 'B':
		return "blue"
	case 'C':
		return "yellow"
	case 'D':
		return "orange"
	}
	return "red"
}
