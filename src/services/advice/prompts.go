package advice

import (
	"fmt"
	"strings"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/aggregate"
)

// StudentPromptResults is how many recent results the student prompt quotes.
const StudentPromptResults = 5

// StudentPrompt asks for study tips based on recent, newest first.
func StudentPrompt(recent []models.Result) string {
	if len(recent) > StudentPromptResults {
		recent = recent[:StudentPromptResults]
	}
	grades := make([]string, 0, len(recent))
	for _, r := range recent {
		grades = append(grades, fmt.Sprintf("%s: %d%% (%s)", r.Subject, r.Score, r.Grade))
	}
	return fmt.Sprintf("I am a student. Here are my recent grades: %s. "+
		"Act as an encouraging academic counselor. Provide 3 specific, actionable study tips "+
		"based on my weakest subjects, and 1 general motivation tip. Keep it concise and friendly.",
		strings.Join(grades, ", "))
}

// ClassPrompt asks for an analysis of one class's marks in one subject.
func ClassPrompt(className, subject string, s aggregate.Stats) string {
	return fmt.Sprintf("I am a teacher. I have just entered marks for %s %s. "+
		"Class Stats: Average: %s%%, Highest: %d%%, Lowest: %d%%. "+
		"Total students marked: %d. "+
		"Please provide a brief, professional analysis of this performance. "+
		"Suggest 2 specific teaching strategies I could use to help the lower performing students in this specific subject.",
		className, subject, aggregate.FormatAverage(s.Average, s.HasData), s.Max, s.Min, s.Count)
}
