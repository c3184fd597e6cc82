package plugin

import (
	"context"

	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session identifies one batch run and the user it runs for
type Session struct {
	ID     string
	User   string
	Logger zerolog.Logger
}

// NewSession creates a session with a fresh id. The logger is tagged with
// the session id and user.
func NewSession(user string, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:     id,
		User:   user,
		Logger: logger.With().Str("session", id).Str("user", user).Logger(),
	}
}

// RowValidator inspects a fully populated row before any file operation.
// A data error (errors.IsDataError) rejects the row; any other error aborts
// the batch. Validators must not modify the row.
type RowValidator interface {
	Name() string
	Validate(ctx context.Context, s *Session, r *row.PluginDataRow) error
}

// RowListener is notified at batch and row boundaries. For session events
// the row is nil. Returning a non-nil row replaces the row for the
// remaining listeners and the copy.
type RowListener interface {
	Name() string
	ProcessEvent(ctx context.Context, s *Session, e Event, r *row.PluginDataRow) (*row.PluginDataRow, error)
}
