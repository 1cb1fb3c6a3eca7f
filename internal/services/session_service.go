package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/errors"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/session"
)

// Control is a playback control action on a session
type Control string

const (
	ControlPlay  Control = "play"
	ControlPause Control = "pause"
	ControlNext  Control = "next"
	ControlPrev  Control = "prev"
)

// SessionService maps session operations onto application errors
type SessionService interface {
	Open(ctx context.Context, level string, batch int) (session.Snapshot, error)
	Get(ctx context.Context, id string) (session.Snapshot, error)
	List(ctx context.Context) []session.Snapshot
	Close(ctx context.Context, id string) error
	SwitchBatch(ctx context.Context, id, level string, batch int) (session.Snapshot, error)
	Control(ctx context.Context, id string, c Control) (session.Snapshot, error)
	SetIndex(ctx context.Context, id string, index int) (session.Snapshot, error)
	ApplySettings(ctx context.Context, id string, settings session.Settings) (session.Snapshot, error)
}

type sessionService struct {
	manager *session.Manager
}

// NewSessionService creates a new SessionService
func NewSessionService(manager *session.Manager) SessionService {
	return &sessionService{manager: manager}
}

func (s *sessionService) Open(ctx context.Context, level string, batch int) (session.Snapshot, error) {
	log := logger.FromContext(ctx)
	if batch < 1 {
		return session.Snapshot{}, errors.NewValidationError("batch", "must be >= 1")
	}
	if level == "" {
		return session.Snapshot{}, errors.NewValidationError("group", "cannot be empty")
	}

	sess, err := s.manager.Open(ctx, level, batch)
	if err != nil {
		return session.Snapshot{}, mapSessionError(log, err, catalog.GroupForLevel(level))
	}
	return sess.Snapshot(), nil
}

func (s *sessionService) Get(ctx context.Context, id string) (session.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// List returns snapshots of the open sessions ordered by id. A session closed
// while listing is left out.
func (s *sessionService) List(ctx context.Context) []session.Snapshot {
	ids := s.manager.IDs()
	snaps := make([]session.Snapshot, 0, len(ids))
	for _, id := range ids {
		if sess, ok := s.manager.Get(id); ok {
			snaps = append(snaps, sess.Snapshot())
		}
	}
	return snaps
}

func (s *sessionService) Close(ctx context.Context, id string) error {
	if !s.manager.Close(id) {
		return errors.NewNotFoundError("session", id)
	}
	return nil
}

func (s *sessionService) SwitchBatch(ctx context.Context, id, level string, batch int) (session.Snapshot, error) {
	if batch < 1 {
		return session.Snapshot{}, errors.NewValidationError("batch", "must be >= 1")
	}
	return s.with(ctx, id, func(sess *session.Session) error {
		return sess.SwitchBatch(ctx, level, batch)
	})
}

func (s *sessionService) Control(ctx context.Context, id string, c Control) (session.Snapshot, error) {
	return s.with(ctx, id, func(sess *session.Session) error {
		switch c {
		case ControlPlay:
			return sess.SetPlaying(true)
		case ControlPause:
			return sess.SetPlaying(false)
		case ControlNext:
			return sess.Next()
		case ControlPrev:
			return sess.Prev()
		default:
			return errors.NewBadRequestError("unknown control: " + string(c))
		}
	})
}

func (s *sessionService) SetIndex(ctx context.Context, id string, index int) (session.Snapshot, error) {
	return s.with(ctx, id, func(sess *session.Session) error {
		return sess.SetIndex(index)
	})
}

func (s *sessionService) ApplySettings(ctx context.Context, id string, settings session.Settings) (session.Snapshot, error) {
	return s.with(ctx, id, func(sess *session.Session) error {
		return sess.Apply(settings)
	})
}

func (s *sessionService) lookup(id string) (*session.Session, error) {
	sess, ok := s.manager.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *sessionService) with(ctx context.Context, id string, fn func(*session.Session) error) (session.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := fn(sess); err != nil {
		return session.Snapshot{}, mapSessionError(logger.FromContext(ctx), err, id)
	}
	return sess.Snapshot(), nil
}

func mapSessionError(log *logger.Logger, err error, subject string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, catalog.ErrNotFound):
		return errors.NewNotFoundError("batch", subject)
	case stderrors.Is(err, session.ErrIndexOutOfRange):
		return errors.NewValidationError("index", err.Error())
	case stderrors.Is(err, session.ErrNoBatch):
		return errors.NewConflictError("session has no batch open")
	case stderrors.Is(err, session.ErrClosed):
		return errors.NewConflictError("session closed")
	default:
		log.Error("session operation failed: %v", err)
		return errors.NewInternalError(err)
	}
}
