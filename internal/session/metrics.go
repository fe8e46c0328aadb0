package session

import (
	"math"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

// CharsPerWord is the standard word length used for WPM.
const CharsPerWord = 5

// CountCorrect compares typed against reference rune by rune and returns
// the number of matching positions and the number of typed runes. Runes
// typed past the end of reference never count as correct.
func CountCorrect(reference, typed []rune) (correct, total int) {
	total = len(typed)
	n := min(len(typed), len(reference))
	for i := 0; i < n; i++ {
		if typed[i] == reference[i] {
			correct++
		}
	}
	return correct, total
}

// WPM returns rounded words per minute for correct characters over elapsed.
// Zero or negative elapsed time yields 0.
func WPM(correct int, elapsed time.Duration) int {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return 0
	}
	minutes := float64(ms) / 60000.0
	return int(math.Round((float64(correct) / CharsPerWord) / minutes))
}

// Accuracy returns the rounded percentage of correct characters, or 0 when
// nothing was typed.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

type gradeRule struct {
	minWPM      int
	minAccuracy int
	grade       model.Grade
}

var gradeRules = []gradeRule{
	{minWPM: 80, minAccuracy: 95, grade: model.Grade{Letter: "S", Label: "Typing Legend"}},
	{minWPM: 60, minAccuracy: 90, grade: model.Grade{Letter: "A", Label: "Excellent Typist"}},
	{minWPM: 40, minAccuracy: 85, grade: model.Grade{Letter: "B", Label: "Good Progress"}},
}

var fallbackGrade = model.Grade{Letter: "C", Label: "Keep Practicing"}

// GradeFor maps final WPM and accuracy to a grade. Rules are checked from
// the highest grade down and the first match wins.
func GradeFor(wpm, accuracy int) model.Grade {
	for _, rule := range gradeRules {
		if wpm >= rule.minWPM && accuracy >= rule.minAccuracy {
			return rule.grade
		}
	}
	return fallbackGrade
}

// GradeByLetter returns the grade for a stored letter.
func GradeByLetter(letter string) (model.Grade, bool) {
	for _, rule := range gradeRules {
		if rule.grade.Letter == letter {
			return rule.grade, true
		}
	}
	if letter == fallbackGrade.Letter {
		return fallbackGrade, true
	}
	return model.Grade{}, false
}
