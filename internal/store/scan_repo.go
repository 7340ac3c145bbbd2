package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cartdanawa/pricescan/internal/models"
)

// ScanEntry is one accepted scan in the history table
type ScanEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// ScanRepo records accepted scans
type ScanRepo struct{ DB *sql.DB }

func NewScanRepo(db *sql.DB) *ScanRepo { return &ScanRepo{DB: db} }

// EnsureSchema creates the history table if it does not exist
func (r *ScanRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists scan_history (
	id         bigserial primary key,
	session_id text not null,
	name       text not null,
	price      integer not null,
	created_at timestamptz not null default now()
)`
	if _, err := r.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("failed to create scan_history: %w", err)
	}
	return nil
}

// Insert stores an accepted scan and returns its row
func (r *ScanRepo) Insert(ctx context.Context, sessionID string, rec models.ScanRecord) (ScanEntry, error) {
	const q = `
insert into scan_history(session_id, name, price)
values ($1,$2,$3)
returning id, created_at`
	e := ScanEntry{SessionID: sessionID, Name: rec.Name, Price: rec.Price}
	if err := r.DB.QueryRowContext(ctx, q, sessionID, rec.Name, rec.Price).Scan(&e.ID, &e.CreatedAt); err != nil {
		return ScanEntry{}, fmt.Errorf("failed to insert scan: %w", err)
	}
	return e, nil
}

// Recent returns the newest scans first
func (r *ScanRepo) Recent(ctx context.Context, limit int) ([]ScanEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
select id, session_id, name, price, created_at
from scan_history
order by created_at desc, id desc
limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var out []ScanEntry
	for rows.Next() {
		var e ScanEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Name, &e.Price, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recorder returns a cart sink that writes accepted scans of one session.
// Failures are logged; history never blocks the cart.
func (r *ScanRepo) Recorder(sessionID string) func(ctx context.Context, rec models.ScanRecord) {
	return func(ctx context.Context, rec models.ScanRecord) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, err := r.Insert(ctx, sessionID, rec); err != nil {
			slog.Error("Failed to record scan history", "session", sessionID, "err", err)
		}
	}
}
