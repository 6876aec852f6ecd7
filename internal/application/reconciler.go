package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Reconcile fetches the recommendation snapshot for the room and installs it.
// Fetches are sequenced: if a newer fetch was issued while this one was in
// flight, its response is discarded so the freshest snapshot always wins.
func (s *Session) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	snapshot, err := s.api.Recommendations(ctx, s.roomID)

	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		s.log.Debug("discarding stale recommendation fetch", zap.Uint64("seq", seq))
		return nil
	}

	if err != nil {
		s.lastError = fmt.Sprintf("load recommendations: %v", err)
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("load recommendations: %w", err)
	}

	s.candidates = snapshot.Candidates
	s.constraints = snapshot.Constraints
	if snapshot.Metadata != nil {
		s.state.Apply(*snapshot.Metadata)
	}
	s.lastError = ""
	s.mu.Unlock()
	s.notify()

	s.log.Debug("recommendations installed",
		zap.Int("candidates", len(snapshot.Candidates)),
		zap.Int("constraints", len(snapshot.Constraints)))
	return nil
}

// reconcileAsync runs a fetch off the frame-handling path so slow responses
// never block the push channel.
func (s *Session) reconcileAsync() {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()

	go func() {
		if err := s.Reconcile(ctx); err != nil {
			s.log.Warn("reactive fetch failed", zap.Error(err))
		}
	}()
}
