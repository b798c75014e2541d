package game

import (
	"strconv"

	"github.com/lettershow/wordclash/go/internal/words"
)

// MinWordLen is the minimum accepted word length in every round
const MinWordLen = 5

// Reason codes returned in submission responses and results
const (
	ReasonOK               = "ok"
	ReasonTooShort         = "too_short"
	ReasonDuplicate        = "duplicate"
	ReasonNotInDictionary  = "not_in_dictionary"
	ReasonBonusCleared     = "BONUS_CLEARED"
	ReasonAlreadySubmitted = "already_submitted"
	ReasonTimeout          = "TIMEOUT"
	ReasonTimeExpired      = "TIME_EXPIRED"
)

// standardPoints is the exact standard-round scoring table. Valid words whose
// length is missing from the table score 0.
var standardPoints = map[int]int{5: 3, 6: 5, 7: 8, 8: 13}

// TierForLen returns the display tier for a word length, empty outside 5-8
func TierForLen(n int) string {
	if n >= 5 && n <= 8 {
		return strconv.Itoa(n)
	}
	return ""
}

// Verdict is the outcome of validating a single candidate word
type Verdict struct {
	Valid  bool
	Points int
	Reason string
}

// ValidateStandard checks a word against the standard-round rules: minimum
// length, not already used this game, present in the dictionary.
func ValidateStandard(word string, used map[string]struct{}, dict *words.Dictionary) Verdict {
	if len(word) < MinWordLen {
		return Verdict{Reason: ReasonTooShort}
	}
	if _, ok := used[word]; ok {
		return Verdict{Reason: ReasonDuplicate}
	}
	if !dict.Contains(word) {
		return Verdict{Reason: ReasonNotInDictionary}
	}
	return Verdict{Valid: true, Points: standardPoints[len(word)], Reason: ReasonOK}
}

// ValidateBonus checks a word against the relaxed bonus-round rules: minimum
// length and dictionary membership only, duplicates allowed.
func ValidateBonus(word string, dict *words.Dictionary) Verdict {
	if len(word) < MinWordLen {
		return Verdict{Reason: ReasonTooShort}
	}
	if !dict.Contains(word) {
		return Verdict{Reason: ReasonNotInDictionary}
	}
	return Verdict{Valid: true, Points: bonusPoints(len(word)), Reason: ReasonBonusCleared}
}

// bonusPoints applies the tiered bonus table; length 8 and above all score the
// flat maximum.
func bonusPoints(n int) int {
	switch {
	case n == 5:
		return 7
	case n == 6:
		return 9
	case n == 7:
		return 13
	case n >= 8:
		return 20
	}
	return 0
}
