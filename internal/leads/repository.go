// Package leads keeps an audit trail of lead notifications that were delivered.
package leads

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"harvin-platform/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS lead_requests (
	id         UUID PRIMARY KEY,
	type       TEXT NOT NULL,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	company    TEXT NOT NULL,
	role       TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
)`

// Recorder stores one delivered lead request.
type Recorder interface {
	Record(ctx context.Context, req models.LeadRequest) (models.LeadRecord, error)
}

// Repository is the Postgres Recorder.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// EnsureSchema creates the lead_requests table if it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create lead_requests: %w", err)
	}
	return nil
}

func (r *Repository) Record(ctx context.Context, req models.LeadRequest) (models.LeadRecord, error) {
	rec := models.LeadRecord{
		ID:        uuid.NewString(),
		Request:   req,
		CreatedAt: r.now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lead_requests (id, type, name, email, company, role, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, string(req.Type), req.Name, req.Email, req.Company, req.Role, req.Message, rec.CreatedAt,
	)
	if err != nil {
		return models.LeadRecord{}, fmt.Errorf("insert lead request: %w", err)
	}
	return rec, nil
}

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func (NoopRecorder) Record(_ context.Context, req models.LeadRequest) (models.LeadRecord, error) {
	return models.LeadRecord{Request: req, CreatedAt: time.Now().UTC()}, nil
}
