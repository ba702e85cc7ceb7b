package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JournalRepository struct {
	pool *pgxpool.Pool
}

func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

func (r *JournalRepository) Record(ctx context.Context, entry domain.JournalEntry) error {
	const stmt = `
INSERT INTO scan_journal (id, session_id, kind, credential_type, value, accepted, message, agenda_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, stmt,
		entry.ID,
		entry.SessionID,
		entry.Kind,
		entry.CredentialType,
		entry.Value,
		entry.Accepted,
		entry.Message,
		entry.AgendaID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first.
func (r *JournalRepository) ListRecent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	const query = `
SELECT id, session_id, kind, credential_type, value, accepted, message, agenda_id, created_at
FROM scan_journal
ORDER BY created_at DESC
LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListBySession returns the newest entries for one session. An id that is
// not a UUID matches nothing.
func (r *JournalRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.JournalEntry, error) {
	const query = `
SELECT id, session_id, kind, credential_type, value, accepted, message, agenda_id, created_at
FROM scan_journal
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list journal by session: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil && isInvalidUUID(err) {
		return nil, nil
	}
	return entries, err
}

// Prune deletes entries older than the cutoff and reports how many went.
func (r *JournalRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scan_journal WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntries(rows pgx.Rows) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.Kind,
			&e.CredentialType,
			&e.Value,
			&e.Accepted,
			&e.Message,
			&e.AgendaID,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return entries, nil
}
