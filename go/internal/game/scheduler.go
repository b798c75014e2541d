package game

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Timer tasks follow one pattern: capture roundID under the lock at launch,
// sleep unsupervised, re-acquire the lock, and commit only if the phase and
// the captured roundID still match. There is no cancellation primitive; a
// timer belonging to a superseded round always finds a mismatch and becomes
// inert. Timers never block the operation that scheduled them.

// wait sleeps for d on the injected clock. Returns false when the app is
// shutting down.
func (a *App) wait(d time.Duration) bool {
	select {
	case <-a.clock.After(d):
		return true
	case <-a.stop:
		return false
	}
}

// startStandardRound launches the countdown-then-round-limit chain.
// Caller must hold mu.
func (a *App) startStandardRound() {
	round := a.s.roundID
	go a.runStandardRound(round)
}

func (a *App) runStandardRound(round uint64) {
	if !a.wait(a.cfg.Timing.Countdown) {
		return
	}
	a.mu.Lock()
	if a.s.phase == PhaseCountdown && a.s.roundID == round {
		a.s.phase = PhaseActive
	}
	snap := a.s.snapshot()
	a.mu.Unlock()
	a.bc.PublishState(snap, false)

	if !a.wait(a.cfg.Timing.RoundLimit) {
		return
	}
	a.mu.Lock()
	if a.s.phase == PhaseActive && a.s.roundID == round {
		a.s.phase = PhaseIdle
		a.s.lastResult = &Result{
			ID:     a.clock.Now().UnixMilli(),
			Reason: ReasonTimeout,
		}
		a.s.currentTeam = a.s.currentTeam.Other()
		a.startResultClear()
		log.Info().Uint64("round_id", round).Msg("round timed out with no submission")
	}
	snap = a.s.snapshot()
	a.mu.Unlock()
	a.bc.PublishState(snap, false)
}

// startBonusRound launches the bonus countdown-then-limit chain.
// Caller must hold mu.
func (a *App) startBonusRound() {
	round := a.s.roundID
	go a.runBonusRound(round)
}

func (a *App) runBonusRound(round uint64) {
	if !a.wait(a.cfg.Timing.Countdown) {
		return
	}
	a.mu.Lock()
	if a.s.phase == PhaseBonusCountdown && a.s.roundID == round {
		a.s.phase = PhaseBonusActive
	}
	snap := a.s.snapshot()
	a.mu.Unlock()
	a.bc.PublishState(snap, false)

	if !a.wait(a.cfg.Timing.BonusLimit) {
		return
	}
	a.mu.Lock()
	if a.s.phase == PhaseBonusActive && a.s.roundID == round && !a.s.bonusSubmitted {
		a.s.lastResult = &Result{
			ID:     a.clock.Now().UnixMilli(),
			Reason: ReasonTimeExpired,
		}
		a.s.bonusSubmitted = true
		a.s.phase = PhaseBonusIntro
		a.startGameOverDelay()
		log.Info().Uint64("round_id", round).Msg("bonus round expired with no submission")
	}
	snap = a.s.snapshot()
	a.mu.Unlock()
	a.bc.PublishState(snap, false)
}

// startScanWatchdog forces the failure phase if the capture client never
// reports back. Caller must hold mu.
func (a *App) startScanWatchdog() {
	round := a.s.roundID
	go a.runScanWatchdog(round)
}

func (a *App) runScanWatchdog(round uint64) {
	if !a.wait(a.cfg.Timing.ScanWatchdog) {
		return
	}
	a.mu.Lock()
	if a.s.roundID != round {
		a.mu.Unlock()
		return
	}
	switch a.s.phase {
	case PhaseScanning:
		a.s.phase = PhaseScanFailed
	case PhaseBonusScanning:
		a.s.phase = PhaseBonusScanFail
	default:
		// scan already resolved
		a.mu.Unlock()
		return
	}
	snap := a.s.snapshot()
	a.mu.Unlock()

	log.Info().Str("phase", string(snap.Phase)).Msg("scan watchdog fired")

	a.bc.PublishState(snap, false)
}

// startResultClear clears the result display after a short delay. Only the
// idle phase may be cleared; a new round may already have started.
// Caller must hold mu.
func (a *App) startResultClear() {
	round := a.s.roundID
	go a.runResultClear(round)
}

func (a *App) runResultClear(round uint64) {
	if !a.wait(a.cfg.Timing.ResultClear) {
		return
	}
	a.mu.Lock()
	if a.s.phase == PhaseIdle && a.s.roundID == round {
		a.s.lastResult = nil
	}
	snap := a.s.snapshot()
	a.mu.Unlock()
	a.bc.PublishState(snap, false)
}

// startGameOverDelay moves to game_over once the client-side reveal animation
// sequence has had time to complete. Guarded by roundID alone so that a fresh
// game started during the reveal retires it. Caller must hold mu.
func (a *App) startGameOverDelay() {
	round := a.s.roundID
	go a.runGameOverDelay(round)
}

func (a *App) runGameOverDelay(round uint64) {
	if !a.wait(a.cfg.Timing.GameOverDelay) {
		return
	}
	a.mu.Lock()
	if a.s.roundID == round {
		a.s.phase = PhaseGameOver
	}
	snap := a.s.snapshot()
	a.mu.Unlock()
	a.bc.PublishState(snap, false)
}
