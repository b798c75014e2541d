package game

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/lettershow/wordclash/go/internal/words"
)

// recorder captures everything the app publishes
type recorder struct {
	mu       sync.Mutex
	states   []Snapshot
	forced   int
	captures int
}

func (r *recorder) PublishState(snap Snapshot, force bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, snap)
	if force {
		r.forced++
	}
}

func (r *recorder) RequestCapture() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures++
}

func (r *recorder) captureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.captures
}

func newTestApp(t *testing.T, entries ...string) (*App, *recorder, *clockwork.FakeClock) {
	t.Helper()
	if len(entries) == 0 {
		entries = []string{"apple", "planet", "crystal", "festival"}
	}
	rec := &recorder{}
	fc := clockwork.NewFakeClock()
	app := NewApp(words.New(entries...), rec, fc, DefaultSessionConfig())
	t.Cleanup(app.Close)
	return app, rec, fc
}

func phaseIs(app *App, p Phase) func() bool {
	return func() bool { return app.Snapshot().Phase == p }
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestStartGameFullReset(t *testing.T) {
	app, _, _ := newTestApp(t)

	// Put some state on the board first
	app.Trigger()
	resp := app.Submit("apple")
	require.True(t, resp.Valid)

	app.StartGame("Red", "Blue")

	snap := app.Snapshot()
	require.Equal(t, PhaseIntro, snap.Phase)
	require.Equal(t, "Red", snap.TeamA.Name)
	require.Equal(t, "Blue", snap.TeamB.Name)
	require.Equal(t, 0, snap.TeamA.Score)
	require.Equal(t, 0, snap.TeamB.Score)
	require.Empty(t, snap.UsedWords)
	require.Equal(t, TeamA, snap.CurrentTeam)
	require.Nil(t, snap.LastResult)
	require.False(t, snap.BonusSubmitted)
}

func TestStartGameKeepsNamesWhenOmitted(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.StartGame("Red", "Blue")
	app.StartGame("", "")

	snap := app.Snapshot()
	require.Equal(t, "Red", snap.TeamA.Name)
	require.Equal(t, "Blue", snap.TeamB.Name)
}

func TestRoundIDBumpsOnlyOnRoundStarts(t *testing.T) {
	app, _, fc := newTestApp(t)

	require.Equal(t, uint64(0), app.Snapshot().RoundID)

	app.StartGame("", "")
	require.Equal(t, uint64(1), app.Snapshot().RoundID)

	app.Trigger() // intro -> idle, no bump
	require.Equal(t, uint64(1), app.Snapshot().RoundID)

	fc.Advance(2 * time.Second)
	app.Trigger() // idle -> countdown
	require.Equal(t, uint64(2), app.Snapshot().RoundID)
}

func TestTriggerDebounce(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.Trigger() // intro -> idle
	require.Equal(t, PhaseIdle, app.Snapshot().Phase)

	// Inside the debounce window: silently dropped
	fc.Advance(time.Second)
	app.Trigger()
	snap := app.Snapshot()
	require.Equal(t, PhaseIdle, snap.Phase)
	require.Equal(t, uint64(0), snap.RoundID)

	// Past the window: accepted
	fc.Advance(time.Second)
	app.Trigger()
	require.Equal(t, PhaseCountdown, app.Snapshot().Phase)
}

func TestStandardSubmissionScenario(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := app.Submit("apple")
	require.True(t, resp.Valid)
	require.Equal(t, 3, resp.Points)
	require.Equal(t, ReasonOK, resp.Reason)

	snap := app.Snapshot()
	require.Equal(t, 3, snap.TeamA.Score)
	require.Equal(t, TeamB, snap.CurrentTeam)
	require.Equal(t, PhaseIdle, snap.Phase)
	require.Equal(t, []string{"apple"}, snap.UsedWords)
	require.NotNil(t, snap.LastResult)
	require.Equal(t, "5", snap.LastResult.Tier)
}

func TestDuplicateSubmission(t *testing.T) {
	app, _, _ := newTestApp(t)

	require.True(t, app.Submit("apple").Valid)

	resp := app.Submit("apple")
	require.False(t, resp.Valid)
	require.Equal(t, ReasonDuplicate, resp.Reason)
	require.Equal(t, 0, resp.Points)

	snap := app.Snapshot()
	require.Equal(t, 3, snap.TeamA.Score)
	require.Equal(t, 0, snap.TeamB.Score)
	// The team still flips on an invalid submission
	require.Equal(t, TeamA, snap.CurrentTeam)
}

func TestSubmissionNormalizesInput(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := app.Submit("  APPLE \n")
	require.True(t, resp.Valid)
	require.Equal(t, []string{"apple"}, app.Snapshot().UsedWords)
}

func TestCountdownToActiveToTimeout(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.Trigger() // intro -> idle
	fc.Advance(2 * time.Second)
	app.Trigger() // idle -> countdown
	require.Equal(t, PhaseCountdown, app.Snapshot().Phase)

	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseActive), waitFor, tick)

	fc.BlockUntil(1)
	fc.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		snap := app.Snapshot()
		return snap.Phase == PhaseIdle &&
			snap.LastResult != nil &&
			snap.LastResult.Reason == ReasonTimeout &&
			snap.CurrentTeam == TeamB
	}, waitFor, tick)

	snap := app.Snapshot()
	require.Equal(t, 0, snap.TeamA.Score)
	require.Equal(t, 0, snap.TeamB.Score)
}

func TestStaleTimerNeverMutates(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.Trigger() // intro -> idle
	fc.Advance(2 * time.Second)
	app.Trigger() // idle -> countdown, timer chain launched
	fc.BlockUntil(1)

	// A fresh game supersedes the round before the countdown elapses
	app.StartGame("", "")
	require.Equal(t, PhaseIntro, app.Snapshot().Phase)

	fc.Advance(3 * time.Second)
	require.Never(t, func() bool {
		return app.Snapshot().Phase != PhaseIntro
	}, 200*time.Millisecond, tick)

	fc.BlockUntil(1)
	fc.Advance(30 * time.Second)
	require.Never(t, func() bool {
		snap := app.Snapshot()
		return snap.Phase != PhaseIntro || snap.LastResult != nil || snap.CurrentTeam != TeamA
	}, 200*time.Millisecond, tick)
}

func TestResultClearsAfterDelay(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.Submit("apple")
	require.NotNil(t, app.Snapshot().LastResult)

	fc.BlockUntil(1)
	fc.Advance(5 * time.Second)
	require.Eventually(t, func() bool {
		return app.Snapshot().LastResult == nil
	}, waitFor, tick)
	require.Equal(t, PhaseIdle, app.Snapshot().Phase)
}

func TestScanWatchdogForcesFailure(t *testing.T) {
	app, rec, fc := newTestApp(t)

	app.Trigger() // intro -> idle
	fc.Advance(2 * time.Second)
	app.Trigger() // idle -> countdown
	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseActive), waitFor, tick)
	fc.BlockUntil(1)

	fc.Advance(2 * time.Second)
	app.Trigger() // active -> scanning, capture requested
	require.Equal(t, PhaseScanning, app.Snapshot().Phase)
	require.Equal(t, 1, rec.captureCount())

	fc.BlockUntil(2) // round-limit timer plus watchdog
	fc.Advance(11 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseScanFailed), waitFor, tick)
}

func TestManualSnapshotBypassesDebounce(t *testing.T) {
	app, rec, fc := newTestApp(t)

	app.Trigger() // intro -> idle
	fc.Advance(2 * time.Second)
	app.Trigger() // idle -> countdown
	fc.BlockUntil(1)

	// No debounce wait needed; countdown is an allowed phase for the shortcut
	app.TriggerSnapshot()
	require.Equal(t, PhaseScanning, app.Snapshot().Phase)
	require.Equal(t, 1, rec.captureCount())
}

func TestClientReportedScanTimeout(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.Trigger()
	fc.Advance(2 * time.Second)
	app.Trigger()
	fc.BlockUntil(1)
	app.TriggerSnapshot()
	require.Equal(t, PhaseScanning, app.Snapshot().Phase)

	app.ScanTimeout()
	require.Equal(t, PhaseScanFailed, app.Snapshot().Phase)
}

func TestInitBonusPicksLeader(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Submit("apple")   // team A +3
	app.Submit("crystal") // team B +8

	app.InitBonus()
	snap := app.Snapshot()
	require.Equal(t, PhaseBonusIntro, snap.Phase)
	require.Equal(t, TeamB, snap.WinningTeam)
	require.Equal(t, TeamB, snap.CurrentTeam)
	require.Nil(t, snap.LastResult)
}

func TestInitBonusTieFavorsTeamA(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.InitBonus()
	require.Equal(t, TeamA, app.Snapshot().WinningTeam)
}

func TestBonusFlowToGameOver(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.InitBonus() // tie favors team A
	require.Equal(t, PhaseBonusIntro, app.Snapshot().Phase)

	app.Trigger() // bonus_intro -> bonus_countdown
	require.Equal(t, PhaseBonusCountdown, app.Snapshot().Phase)

	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseBonusActive), waitFor, tick)
	fc.BlockUntil(1)

	resp := app.Submit("festival")
	require.True(t, resp.Valid)
	require.Equal(t, 20, resp.Points)
	require.Equal(t, ReasonBonusCleared, resp.Reason)

	snap := app.Snapshot()
	require.Equal(t, PhaseBonusIntro, snap.Phase)
	require.Equal(t, 20, snap.TeamA.Score)
	require.True(t, snap.BonusSubmitted)

	// Reveal delay elapses, then the game ends
	fc.BlockUntil(2) // bonus-limit timer plus game-over delay
	fc.Advance(12 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseGameOver), waitFor, tick)

	// The bonus-limit timer firing later finds the submission already made
	fc.BlockUntil(1)
	fc.Advance(48 * time.Second)
	require.Never(t, func() bool {
		snap := app.Snapshot()
		return snap.Phase != PhaseGameOver || snap.TeamA.Score != 20
	}, 200*time.Millisecond, tick)
}

func TestBonusTimeoutExpiresRound(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.InitBonus()
	app.Trigger()
	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseBonusActive), waitFor, tick)

	fc.BlockUntil(1)
	fc.Advance(60 * time.Second)
	require.Eventually(t, func() bool {
		snap := app.Snapshot()
		return snap.Phase == PhaseBonusIntro &&
			snap.BonusSubmitted &&
			snap.LastResult != nil &&
			snap.LastResult.Reason == ReasonTimeExpired
	}, waitFor, tick)

	// Game over follows after the reveal delay
	fc.BlockUntil(1)
	fc.Advance(12 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseGameOver), waitFor, tick)
}

func TestBonusAlreadySubmitted(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.InitBonus()
	app.Trigger()
	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseBonusActive), waitFor, tick)
	fc.BlockUntil(1)

	require.True(t, app.Submit("festival").Valid)
	scoreAfter := app.Snapshot().TeamA.Score

	// A late scan-failure report drops the session back into a bonus
	// submission phase while the flag is still consumed.
	app.ScanTimeout()
	require.Equal(t, PhaseBonusScanFail, app.Snapshot().Phase)

	resp := app.Submit("crystal")
	require.False(t, resp.Valid)
	require.Equal(t, ReasonAlreadySubmitted, resp.Reason)
	require.Equal(t, 0, resp.Points)
	require.Equal(t, scoreAfter, app.Snapshot().TeamA.Score)
}

func TestBonusTierReflectsRawWordLength(t *testing.T) {
	app, _, fc := newTestApp(t, "adventures")

	app.InitBonus()
	app.Trigger()
	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseBonusActive), waitFor, tick)
	fc.BlockUntil(1)

	resp := app.Submit("adventures")
	require.True(t, resp.Valid)
	require.Equal(t, 20, resp.Points)

	res := app.Snapshot().LastResult
	require.NotNil(t, res)
	require.Equal(t, "10", res.Tier)
	require.Equal(t, 10, res.Len)
}

func TestBonusTierOnRejectedWord(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.InitBonus()
	app.Trigger()
	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseBonusActive), waitFor, tick)
	fc.BlockUntil(1)

	resp := app.Submit("ace")
	require.False(t, resp.Valid)
	require.Equal(t, ReasonTooShort, resp.Reason)

	res := app.Snapshot().LastResult
	require.NotNil(t, res)
	require.Equal(t, "3", res.Tier)
}

func TestRetriggeringBonusRetiresGameOverDelay(t *testing.T) {
	app, _, fc := newTestApp(t)

	app.InitBonus()
	app.Trigger()
	fc.BlockUntil(1)
	fc.Advance(3 * time.Second)
	require.Eventually(t, phaseIs(app, PhaseBonusActive), waitFor, tick)
	fc.BlockUntil(1)

	app.Submit("apple") // consumes the bonus, schedules game over
	require.Equal(t, PhaseBonusIntro, app.Snapshot().Phase)
	fc.BlockUntil(2)

	// Moderator re-runs the bonus round before the reveal delay elapses;
	// the pending game-over timer is now stale.
	fc.Advance(2 * time.Second)
	app.Trigger() // bonus_intro -> bonus_countdown, roundID bumps
	require.Equal(t, PhaseBonusCountdown, app.Snapshot().Phase)

	fc.BlockUntil(3) // old chain, stale game-over delay, new chain
	fc.Advance(10 * time.Second)
	require.Never(t, func() bool {
		return app.Snapshot().Phase == PhaseGameOver
	}, 200*time.Millisecond, tick)
}

func TestForcePublish(t *testing.T) {
	app, rec, _ := newTestApp(t)

	app.ForcePublish()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, 1, rec.forced)
	require.Len(t, rec.states, 1)
	require.Equal(t, PhaseIntro, rec.states[0].Phase)
}
