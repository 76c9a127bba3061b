package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	LevelZJC    = "ZJC"
	LevelOLevel = "O Level"
	LevelALevel = "A Level"
)

// Levels in display order.
var Levels = []string{LevelZJC, LevelOLevel, LevelALevel}

// ClassesByLevel lists the classes valid for each level.
var ClassesByLevel = map[string][]string{
	LevelZJC:    {"1A", "1B", "2A", "2B"},
	LevelOLevel: {"3 Sciences", "3 Commercials", "3 Arts", "4 Sciences", "4 Commercials", "4 Arts"},
	LevelALevel: {"Lower 6 Sciences", "Lower 6 Commercials", "Lower 6 Arts", "Upper 6 Sciences", "Upper 6 Commercials", "Upper 6 Arts"},
}

// Terms are the three grading periods of a year.
var Terms = []string{"Term 1", "Term 2", "Term 3"}

var oLevelSubjects = map[string][]string{
	"ZJC": {
		"English", "Shona", "Heritage", "Combined Science", "Computer Science",
		"Geography", "FRS", "History", "Mathematics", "Accounts", "Agriculture",
	},
	"Sciences": {
		"Mathematics", "Heritage", "Combined Science", "Computer Science", "English",
		"Physics", "Biology", "Agriculture", "Geography", "Chemistry",
	},
	"Commercials": {
		"Mathematics", "English", "Heritage", "Combined Science", "Computer Science",
		"Geography", "Accounts", "Business Studies", "Economics",
	},
	"Arts": {
		"Mathematics", "English", "Heritage", "Combined Science", "Shona",
		"History", "Sociology", "FRS", "Literature in English", "Literature in Shona",
	},
}

var aLevelSubjects = map[string][]string{
	"Sciences": {
		"Mathematics", "Physics", "Chemistry", "Biology", "Computer Science",
		"Geography", "Agriculture",
	},
	"Commercials": {
		"Mathematics", "Accounts", "Business Studies", "Economics",
		"Computer Science", "Geography",
	},
	"Arts": {
		"History", "Sociology", "FRS", "Literature in English",
		"Literature in Shona", "Geography", "Shona",
	},
}

// AllSubjects is the sorted union of every subject offered.
var AllSubjects = func() []string {
	seen := map[string]struct{}{"Art & Design": {}}
	for _, group := range []map[string][]string{oLevelSubjects, aLevelSubjects} {
		for _, subjects := range group {
			for _, s := range subjects {
				seen[s] = struct{}{}
			}
		}
	}
	all := make([]string, 0, len(seen))
	for s := range seen {
		all = append(all, s)
	}
	sort.Strings(all)
	return all
}()

// IsLevel reports whether level is one of Levels.
func IsLevel(level string) bool {
	_, ok := ClassesByLevel[level]
	return ok
}

// ClassBelongsToLevel reports whether className is offered at level.
func ClassBelongsToLevel(level, className string) bool {
	for _, c := range ClassesByLevel[level] {
		if c == className {
			return true
		}
	}
	return false
}

// IsTerm reports whether term is one of Terms.
func IsTerm(term string) bool {
	for _, t := range Terms {
		if t == term {
			return true
		}
	}
	return false
}

// SubjectsForClass returns the subjects taught in className. Unknown classes
// fall back to AllSubjects.
func SubjectsForClass(className string) []string {
	if className == "" {
		return AllSubjects
	}
	c := strings.ToLower(className)
	stream := ""
	switch {
	case strings.Contains(c, "sciences"):
		stream = "Sciences"
	case strings.Contains(c, "commercials"):
		stream = "Commercials"
	case strings.Contains(c, "arts"):
		stream = "Arts"
	}

	if strings.Contains(c, "lower 6") || strings.Contains(c, "upper 6") {
		if stream != "" {
			return aLevelSubjects[stream]
		}
	} else if stream != "" {
		return oLevelSubjects[stream]
	}
	if strings.HasPrefix(c, "1") || strings.HasPrefix(c, "2") {
		return oLevelSubjects["ZJC"]
	}
	return AllSubjects
}

// YearOptions returns next year followed by the nine years before now.
func YearOptions(now time.Time) []string {
	cy := now.Year()
	years := make([]string, 0, 11)
	for i := -1; i < 10; i++ {
		years = append(years, strconv.Itoa(cy-i))
	}
	return years
}
