package broadcast

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lettershow/wordclash/go/internal/game"
)

// EventSink delivers a named event with a JSON-serializable payload to one
// realtime transport. Implementations must not block indefinitely.
type EventSink interface {
	Send(event string, payload any) error
}

// Outbound event names
const (
	EventGameState    = "game_state"
	EventAdminSecrets = "admin_secrets"
	EventSnapshot     = "snapshot"
)

// Synchronizer pushes session snapshots to the realtime sinks, suppressing
// pushes whose snapshot is structurally identical to the last one published.
type Synchronizer struct {
	pairings []game.SecretPair
	sinks    []EventSink

	// mu serializes publishes arriving from request handlers and timer tasks
	mu sync.Mutex

	// last is a detached value copy taken at publish time. Comparing against
	// a live reference would make every mutation look like a no-op.
	last *game.Snapshot
}

// NewSynchronizer creates a synchronizer publishing to the given sinks
func NewSynchronizer(pairings []game.SecretPair, sinks ...EventSink) *Synchronizer {
	return &Synchronizer{pairings: pairings, sinks: sinks}
}

// AddSink attaches another transport after construction
func (s *Synchronizer) AddSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// PublishState sends the snapshot to every sink unless it is unchanged since
// the last publish and force is not set. On publish it also derives the
// admin-only pairing reveal; a failure there never un-publishes the snapshot.
func (s *Synchronizer) PublishState(snap game.Snapshot, force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && s.last != nil && reflect.DeepEqual(*s.last, snap) {
		return
	}
	s.last = cloneSnapshot(snap)

	s.send(EventGameState, snap)

	if len(s.pairings) > 0 {
		idx := snap.PairIndex % len(s.pairings)
		if idx < 0 {
			idx += len(s.pairings)
		}
		s.send(EventAdminSecrets, s.pairings[idx])
	}
}

// RequestCapture instructs the capture client to take a photograph now
func (s *Synchronizer) RequestCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send(EventSnapshot, struct{}{})
}

func (s *Synchronizer) send(event string, payload any) {
	for _, sink := range s.sinks {
		if err := sink.Send(event, payload); err != nil {
			log.Warn().Err(err).Str("event", event).Msg("event sink send failed")
		}
	}
}

// cloneSnapshot detaches the snapshot's reference fields so later caller-side
// mutation cannot leak into the comparison baseline.
func cloneSnapshot(snap game.Snapshot) *game.Snapshot {
	cp := snap
	cp.UsedWords = append([]string(nil), snap.UsedWords...)
	if snap.LastResult != nil {
		r := *snap.LastResult
		cp.LastResult = &r
	}
	return &cp
}
