package game

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/lettershow/wordclash/go/internal/words"
)

// App owns the singleton game session. Every read that feeds a decision and
// every write happens while holding mu; publication to observers happens after
// the lock is released.
type App struct {
	mu    sync.Mutex
	s     session
	dict  *words.Dictionary
	bc    Broadcaster
	clock clockwork.Clock
	cfg   SessionConfig

	// stop retires background timers on shutdown
	stop     chan struct{}
	stopOnce sync.Once
}

// NewApp creates the game app with a session in the intro phase
func NewApp(dict *words.Dictionary, bc Broadcaster, clock clockwork.Clock, cfg SessionConfig) *App {
	if cfg.PairCount < 1 {
		cfg.PairCount = 1
	}
	return &App{
		dict:  dict,
		bc:    bc,
		clock: clock,
		cfg:   cfg,
		s: session{
			teamA:       Team{Name: cfg.TeamAName},
			teamB:       Team{Name: cfg.TeamBName},
			usedWords:   make(map[string]struct{}),
			currentTeam: TeamA,
			phase:       PhaseIntro,
		},
		stop: make(chan struct{}),
	}
}

// Close retires all outstanding timer tasks
func (a *App) Close() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// Snapshot returns a detached copy of the current session state
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.s.snapshot()
}

// StartGame performs a full reset: scores zeroed, used words cleared, phase
// forced back to intro. Bumping roundID renders every timer still in flight
// from the previous game permanently inert.
func (a *App) StartGame(teamA, teamB string) {
	a.mu.Lock()
	a.s.pairIndex = (a.s.pairIndex + 1) % a.cfg.PairCount
	if teamA != "" {
		a.s.teamA.Name = teamA
	}
	if teamB != "" {
		a.s.teamB.Name = teamB
	}
	a.s.teamA.Score = 0
	a.s.teamB.Score = 0
	a.s.usedWords = make(map[string]struct{})
	a.s.currentTeam = TeamA
	a.s.phase = PhaseIntro
	a.s.lastResult = nil
	a.s.winningTeam = ""
	a.s.bonusSubmitted = false
	a.s.lastTriggerAt = time.Time{}
	a.s.roundID++
	snap := a.s.snapshot()
	a.mu.Unlock()

	log.Info().
		Str("teamA", snap.TeamA.Name).
		Str("teamB", snap.TeamB.Name).
		Uint64("round_id", snap.RoundID).
		Msg("game started")

	a.bc.PublishState(snap, true)
}

// InitBonus enters the bonus flow for whichever team leads; ties favor team A
func (a *App) InitBonus() {
	a.mu.Lock()
	winner := TeamA
	if a.s.teamB.Score > a.s.teamA.Score {
		winner = TeamB
	}
	a.s.winningTeam = winner
	a.s.currentTeam = winner
	a.s.phase = PhaseBonusIntro
	a.s.lastResult = nil
	a.s.bonusSubmitted = false
	snap := a.s.snapshot()
	a.mu.Unlock()

	log.Info().Str("winning_team", string(winner)).Msg("bonus round initialized")

	a.bc.PublishState(snap, false)
}

// ResetGame returns the session to intro with scores zeroed
func (a *App) ResetGame() {
	a.mu.Lock()
	a.s.phase = PhaseIntro
	a.s.teamA.Score = 0
	a.s.teamB.Score = 0
	a.s.winningTeam = ""
	a.s.lastResult = nil
	a.s.bonusSubmitted = false
	snap := a.s.snapshot()
	a.mu.Unlock()

	log.Info().Msg("game reset")

	a.bc.PublishState(snap, false)
}

// Submit processes a word submission, routed to standard or bonus validation
// by the current phase.
func (a *App) Submit(raw string) SubmitResponse {
	word := strings.ToLower(strings.TrimSpace(raw))
	n := len(word)

	a.mu.Lock()

	if a.s.phase.isBonusSubmission() {
		if a.s.bonusSubmitted {
			a.mu.Unlock()
			return SubmitResponse{Valid: false, Points: 0, Reason: ReasonAlreadySubmitted}
		}

		v := ValidateBonus(word, a.dict)
		team := a.s.currentTeam
		if v.Valid {
			a.addScore(team, v.Points)
		}
		a.s.lastResult = &Result{
			ID:     a.clock.Now().UnixMilli(),
			Word:   word,
			Valid:  v.Valid,
			Len:    n,
			// Bonus results report the raw length as the tier, even
			// outside the scored 5-8 range.
			Tier:   strconv.Itoa(n),
			Points: v.Points,
			Reason: v.Reason,
		}

		// The single bonus submission is consumed on success and failure
		// alike; the reveal plays out, then the game ends.
		a.s.bonusSubmitted = true
		a.s.phase = PhaseBonusIntro
		a.startGameOverDelay()

		snap := a.s.snapshot()
		a.mu.Unlock()

		log.Info().
			Str("word", word).
			Bool("valid", v.Valid).
			Int("points", v.Points).
			Str("reason", v.Reason).
			Msg("bonus submission")

		a.bc.PublishState(snap, false)
		return SubmitResponse{Valid: v.Valid, Points: v.Points, Reason: v.Reason}
	}

	v := ValidateStandard(word, a.s.usedWords, a.dict)
	team := a.s.currentTeam
	if v.Valid {
		a.s.usedWords[word] = struct{}{}
		a.addScore(team, v.Points)
	}
	a.s.lastResult = &Result{
		ID:     a.clock.Now().UnixMilli(),
		Word:   word,
		Valid:  v.Valid,
		Len:    n,
		Tier:   TierForLen(n),
		Points: v.Points,
		Reason: v.Reason,
	}
	a.s.phase = PhaseIdle
	a.s.currentTeam = team.Other()
	a.startResultClear()

	snap := a.s.snapshot()
	a.mu.Unlock()

	log.Info().
		Str("word", word).
		Bool("valid", v.Valid).
		Int("points", v.Points).
		Str("reason", v.Reason).
		Str("team", string(team)).
		Msg("word submission")

	a.bc.PublishState(snap, false)
	return SubmitResponse{Valid: v.Valid, Points: v.Points, Reason: v.Reason}
}

// Trigger handles a moderator advance. Triggers arriving within the debounce
// window of the last accepted one are silently dropped.
func (a *App) Trigger() {
	now := a.clock.Now()

	a.mu.Lock()
	if !a.s.lastTriggerAt.IsZero() && now.Sub(a.s.lastTriggerAt) < a.cfg.Timing.TriggerDebounce {
		a.mu.Unlock()
		return
	}
	a.s.lastTriggerAt = now

	capture := false
	switch a.s.phase {
	case PhaseIntro:
		a.s.phase = PhaseIdle

	case PhaseIdle:
		a.s.phase = PhaseCountdown
		a.s.lastResult = nil
		a.s.roundID++
		a.startStandardRound()

	case PhaseBonusIntro:
		a.s.phase = PhaseBonusCountdown
		a.s.bonusSubmitted = false
		a.s.roundID++
		a.startBonusRound()

	case PhaseActive:
		a.s.phase = PhaseScanning
		capture = true
		a.startScanWatchdog()

	case PhaseBonusActive:
		a.s.phase = PhaseBonusScanning
		capture = true
		a.startScanWatchdog()
	}

	snap := a.s.snapshot()
	a.mu.Unlock()

	log.Debug().Str("phase", string(snap.Phase)).Msg("trigger accepted")

	if capture {
		a.bc.RequestCapture()
	}
	a.bc.PublishState(snap, false)
}

// TriggerSnapshot is the manual capture shortcut. It bypasses the trigger
// debounce and also works during the countdown phases.
func (a *App) TriggerSnapshot() {
	a.mu.Lock()
	capture := false
	switch a.s.phase {
	case PhaseActive, PhaseCountdown:
		a.s.phase = PhaseScanning
		capture = true
		a.startScanWatchdog()
	case PhaseBonusActive, PhaseBonusCountdown:
		a.s.phase = PhaseBonusScanning
		capture = true
		a.startScanWatchdog()
	}
	snap := a.s.snapshot()
	a.mu.Unlock()

	if capture {
		a.bc.RequestCapture()
	}
	a.bc.PublishState(snap, false)
}

// ScanTimeout handles a client-reported capture failure, forcing the failure
// phase immediately, independent of the watchdog.
func (a *App) ScanTimeout() {
	a.mu.Lock()
	if a.s.phase.IsBonus() {
		a.s.phase = PhaseBonusScanFail
	} else {
		a.s.phase = PhaseScanFailed
	}
	snap := a.s.snapshot()
	a.mu.Unlock()

	log.Info().Str("phase", string(snap.Phase)).Msg("client reported scan failure")

	a.bc.PublishState(snap, false)
}

// ScanComplete is informational only; the actual state change arrives through
// Submit.
func (a *App) ScanComplete() {
	log.Debug().Msg("scanner reported successful capture")
}

// ForcePublish pushes the current snapshot regardless of change detection,
// used when a new observer connects.
func (a *App) ForcePublish() {
	a.bc.PublishState(a.Snapshot(), true)
}

// addScore credits points to a team. Caller must hold mu.
func (a *App) addScore(team TeamID, pts int) {
	if team == TeamA {
		a.s.teamA.Score += pts
	} else {
		a.s.teamB.Score += pts
	}
}
