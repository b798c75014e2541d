package game

import (
	"sort"
	"strings"
	"time"
)

// Phase represents the current stage of the game session
type Phase string

const (
	PhaseIntro          Phase = "intro"
	PhaseIdle           Phase = "idle"
	PhaseCountdown      Phase = "countdown"
	PhaseActive         Phase = "active"
	PhaseScanning       Phase = "scanning"
	PhaseScanFailed     Phase = "scan_failed"
	PhaseBonusIntro     Phase = "bonus_intro"
	PhaseBonusCountdown Phase = "bonus_countdown"
	PhaseBonusActive    Phase = "bonus_active"
	PhaseBonusScanning  Phase = "bonus_scanning"
	PhaseBonusScanFail  Phase = "bonus_scan_failed"
	PhaseGameOver       Phase = "game_over"
)

// IsBonus reports whether the phase belongs to the bonus flow
func (p Phase) IsBonus() bool {
	return strings.HasPrefix(string(p), "bonus_")
}

// isBonusSubmission reports whether a word submission in this phase is handled
// by the bonus logic. Submissions during bonus_intro and bonus_countdown take
// the standard path.
func (p Phase) isBonusSubmission() bool {
	switch p {
	case PhaseBonusActive, PhaseBonusScanning, PhaseBonusScanFail:
		return true
	}
	return false
}

// TeamID identifies one of the two competing teams
type TeamID string

const (
	TeamA TeamID = "A"
	TeamB TeamID = "B"
)

// Other returns the opposing team
func (t TeamID) Other() TeamID {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Team holds the display name and running score for one team
type Team struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Result records the outcome of the most recent submission or timeout.
// Replaced wholesale on every update, never mutated in place.
type Result struct {
	ID     int64  `json:"id"`
	Word   string `json:"word"`
	Valid  bool   `json:"valid"`
	Len    int    `json:"len"`
	Tier   string `json:"tier,omitempty"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// SubmitResponse is the structured answer to a word submission
type SubmitResponse struct {
	Valid  bool   `json:"valid"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// SecretPair is the admin-only pairing reveal for the current game
type SecretPair struct {
	A string `json:"A"`
	B string `json:"B"`
}

// session is the authoritative in-memory game state. All fields are guarded by
// the App mutex; nothing outside the App may touch it.
type session struct {
	pairIndex      int
	teamA          Team
	teamB          Team
	usedWords      map[string]struct{}
	currentTeam    TeamID
	phase          Phase
	lastResult     *Result
	lastTriggerAt  time.Time
	winningTeam    TeamID
	bonusSubmitted bool
	roundID        uint64
}

// Snapshot is the external value-copy of the session pushed to observers.
// usedWords is rendered as a sorted slice; consumers must not depend on the
// ordering staying stable across publishes.
type Snapshot struct {
	PairIndex      int     `json:"pair_index"`
	TeamA          Team    `json:"teamA"`
	TeamB          Team    `json:"teamB"`
	UsedWords      []string `json:"used_words"`
	CurrentTeam    TeamID  `json:"current_team"`
	Phase          Phase   `json:"phase"`
	LastResult     *Result `json:"last_result"`
	LastTriggerAt  int64   `json:"last_trigger_at"`
	WinningTeam    TeamID  `json:"winning_team"`
	BonusSubmitted bool    `json:"bonus_submitted"`
	RoundID        uint64  `json:"round_id"`
}

// snapshot builds a detached value copy of the session. Caller must hold the
// App mutex.
func (s *session) snapshot() Snapshot {
	used := make([]string, 0, len(s.usedWords))
	for w := range s.usedWords {
		used = append(used, w)
	}
	sort.Strings(used)

	var res *Result
	if s.lastResult != nil {
		r := *s.lastResult
		res = &r
	}

	var triggeredAt int64
	if !s.lastTriggerAt.IsZero() {
		triggeredAt = s.lastTriggerAt.UnixMilli()
	}

	return Snapshot{
		PairIndex:      s.pairIndex,
		TeamA:          s.teamA,
		TeamB:          s.teamB,
		UsedWords:      used,
		CurrentTeam:    s.currentTeam,
		Phase:          s.phase,
		LastResult:     res,
		LastTriggerAt:  triggeredAt,
		WinningTeam:    s.winningTeam,
		BonusSubmitted: s.bonusSubmitted,
		RoundID:        s.roundID,
	}
}

// Timing holds every delay the scheduler uses
type Timing struct {
	Countdown       time.Duration
	RoundLimit      time.Duration
	BonusLimit      time.Duration
	ScanWatchdog    time.Duration
	ResultClear     time.Duration
	GameOverDelay   time.Duration
	TriggerDebounce time.Duration
}

// DefaultTiming returns the show's production delays
func DefaultTiming() Timing {
	return Timing{
		Countdown:       3 * time.Second,
		RoundLimit:      30 * time.Second,
		BonusLimit:      60 * time.Second,
		ScanWatchdog:    11 * time.Second,
		ResultClear:     5 * time.Second,
		GameOverDelay:   12 * time.Second,
		TriggerDebounce: 2 * time.Second,
	}
}

// SessionConfig configures a new game session
type SessionConfig struct {
	Timing    Timing
	PairCount int
	TeamAName string
	TeamBName string
}

// DefaultSessionConfig returns a config with production timing and two pairings
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Timing:    DefaultTiming(),
		PairCount: 2,
		TeamAName: "Team A",
		TeamBName: "Team B",
	}
}

// Broadcaster publishes session snapshots and capture commands to observers.
// Calls always happen after the session lock has been released.
type Broadcaster interface {
	PublishState(snap Snapshot, force bool)
	RequestCapture()
}
