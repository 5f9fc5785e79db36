package attribution

import (
	"context"

	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/session"
)

// Service runs the per-session attribution state machine on top of a
// session.Store. Updates for one client are applied one at a time.
type Service struct {
	engine *Engine
	store  session.Store
	locks  *session.KeyedMutex
}

func NewService(engine *Engine, store session.Store) *Service {
	return &Service{
		engine: engine,
		store:  store,
		locks:  session.NewKeyedMutex(),
	}
}

func (s *Service) Engine() *Engine { return s.engine }

// Touch records a page load: a missing or expired session starts over, a
// new campaign re-attributes the live session, anything else only keeps
// it alive.
func (s *Service) Touch(ctx context.Context, clientID string, visit Visit) (*Attribution, error) {
	if clientID == "" {
		return nil, ErrMissingClient
	}
	unlock := s.locks.Lock(clientID)
	defer unlock()

	a, err := s.resolve(ctx, clientID, visit)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, clientID, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetStep moves the session to step
func (s *Service) SetStep(ctx context.Context, clientID string, step domain.FunnelStep) (*Attribution, error) {
	if clientID == "" {
		return nil, ErrMissingClient
	}
	if !step.IsValid() {
		return nil, ErrInvalidStep
	}
	unlock := s.locks.Lock(clientID)
	defer unlock()

	a, err := s.resolve(ctx, clientID, Visit{})
	if err != nil {
		return nil, err
	}
	a = s.engine.UpdateStep(a, step)
	if err := s.save(ctx, clientID, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Current returns the live session, creating one when needed
func (s *Service) Current(ctx context.Context, clientID string) (*Attribution, error) {
	return s.Touch(ctx, clientID, Visit{})
}

// Snapshot returns the lead-facing view of the live session
func (s *Service) Snapshot(ctx context.Context, clientID string) (*Snapshot, error) {
	a, err := s.Current(ctx, clientID)
	if err != nil {
		return nil, err
	}
	snap := Snap(*a)
	return &snap, nil
}

// Reset forgets the session
func (s *Service) Reset(ctx context.Context, clientID string) error {
	if clientID == "" {
		return ErrMissingClient
	}
	unlock := s.locks.Lock(clientID)
	defer unlock()
	return s.store.Remove(ctx, session.AttributionKey(clientID))
}

// resolve must be called with the client lock held
func (s *Service) resolve(ctx context.Context, clientID string, visit Visit) (Attribution, error) {
	utm := ParseUTM(visit.RawQuery)

	existing, ok, err := session.Load[Attribution](ctx, s.store, session.AttributionKey(clientID), StateVersion)
	if err != nil {
		return Attribution{}, err
	}

	switch {
	case !ok:
		a := s.engine.CreateInitial(utm, visit.Referrer, visit.LandingPage)
		zap.L().Debug("attribution session started",
			zap.String("session_id", a.SessionID),
			zap.String("source", string(a.Source)),
		)
		return a, nil
	case s.engine.IsExpired(existing):
		a := s.engine.CreateInitial(utm, visit.Referrer, visit.LandingPage)
		zap.L().Debug("attribution session expired",
			zap.String("previous_session_id", existing.SessionID),
			zap.String("session_id", a.SessionID),
			zap.Duration("idle", a.LastVisit.Sub(existing.LastVisit)),
		)
		return a, nil
	default:
		merged := s.engine.Merge(existing, utm, visit.Referrer)
		if merged.Source != existing.Source {
			zap.L().Debug("attribution session re-attributed",
				zap.String("session_id", merged.SessionID),
				zap.String("from", string(existing.Source)),
				zap.String("to", string(merged.Source)),
			)
		}
		return merged, nil
	}
}

func (s *Service) save(ctx context.Context, clientID string, a Attribution) error {
	return session.Save(ctx, s.store, session.AttributionKey(clientID), StateVersion, a)
}
