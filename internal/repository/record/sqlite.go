package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/surveyd/internal/db"
	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
)

// SQLiteRepo stores records as JSON documents in the records table.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite creates a record repository over an opened SQLite handle.
func NewSQLite(sqlDB *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: sqlDB, now: time.Now}
}

// Insert creates a record without statistics under a fresh UUID.
func (r *SQLiteRepo) Insert(ctx context.Context, d record.Draft) (string, error) {
	now := r.now().UTC()
	data, err := json.Marshal(newDocument(d, now))
	if err != nil {
		return "", persistenceErr(db.OpInsertOne, fmt.Errorf("marshal document: %w", err))
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO records (id, user_id, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, d.UserID, string(data), now.UnixNano(), now.UnixNano())
	if err != nil {
		return "", persistenceErr(db.OpInsertOne, err)
	}
	return id, nil
}

// UpdateStatistics merges the statistics bundle into the stored document.
func (r *SQLiteRepo) UpdateStatistics(ctx context.Context, id string, b stats.Bundle) error {
	patch, err := json.Marshal(statsPatch{Mean: b.Mean, Median: b.Median, StdDev: b.StdDev})
	if err != nil {
		return persistenceErr(db.OpUpdateOne, fmt.Errorf("marshal statistics: %w", err))
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET document = json_patch(document, ?), updated_at = ? WHERE id = ?`,
		string(patch), r.now().UTC().UnixNano(), id)
	if err != nil {
		return persistenceErr(db.OpUpdateOne, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistenceErr(db.OpUpdateOne, err)
	}
	if n == 0 {
		return notFoundErr(id)
	}
	return nil
}

// Find returns a record by id.
func (r *SQLiteRepo) Find(ctx context.Context, id string) (record.Stored, error) {
	var (
		raw                  string
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT document, created_at, updated_at FROM records WHERE id = ?`, id).
		Scan(&raw, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Stored{}, notFoundErr(id)
		}
		return record.Stored{}, persistenceErr(db.OpFindOne, err)
	}

	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return record.Stored{}, persistenceErr(db.OpFindOne, fmt.Errorf("decode document: %w", err))
	}
	doc.CreatedAt = time.Unix(0, createdAt).UTC()
	doc.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return doc.toStored(id), nil
}
