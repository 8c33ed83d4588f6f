package myday

import (
	"strings"

	"github.com/trezcool/studytrack/core"
)

// ProductiveKeywords mark a category as productive when its name contains one of them.
// Scores are compared across clients: the list must not change.
var ProductiveKeywords = []string{
	"study", "skills", "college", "coding", "code", "dsa", "programming", "project",
	"homework", "assignment", "lecture", "class", "lab", "reading", "research", "practice",
	"learn", "course", "tutorial", "exam", "test", "revision", "competitive", "development",
	"dev", "internship", "work", "training", "workshop", "seminar",
}

// IsProductive does a case-insensitive substring match of name against ProductiveKeywords.
func IsProductive(name string) bool {
	name = core.CleanString(name, true /* lower */)
	for _, kw := range ProductiveKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Score returns the total hours and round(100 * productive / total); 0 when total is 0.
func Score(categories []Category) (totalHours float64, score int) {
	var productive float64
	for _, c := range categories {
		totalHours += c.Hours
		if IsProductive(c.Name) {
			productive += c.Hours
		}
	}
	return totalHours, core.Percent(productive, totalHours)
}
