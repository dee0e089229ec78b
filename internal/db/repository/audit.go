package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nosql-catalog/internal/domain"
)

// auditTimeLayout is the timestamp format of update_logs rows.
const auditTimeLayout = "2006-01-02 15:04:05"

// AuditRepo implements domain.AuditRepository over the update_logs table.
type AuditRepo struct {
	db DBTX
}

// NewAuditRepo creates an AuditRepo.
func NewAuditRepo(db DBTX) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	before, err := snapshotJSON(e.Before)
	if err != nil {
		return fmt.Errorf("encode existing data: %w", err)
	}
	after, err := snapshotJSON(e.After)
	if err != nil {
		return fmt.Errorf("encode updated data: %w", err)
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO update_logs (user_name, timestamp, action, keyspace_name, table_name, column_name,
			existing_data, updated_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Actor, created.UTC().Format(auditTimeLayout), e.Action,
		e.Keyspace, e.Table, e.Column, before, after)
	return err
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Keyspace != nil {
		where = append(where, "keyspace_name = ?")
		args = append(args, *filter.Keyspace)
	}
	if filter.Table != nil {
		where = append(where, "table_name = ?")
		args = append(args, *filter.Table)
	}
	if filter.Actor != nil {
		where = append(where, "user_name = ?")
		args = append(args, *filter.Actor)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM update_logs"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_name, timestamp, action, keyspace_name, table_name, column_name,
			existing_data, updated_data FROM update_logs`+clause+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, filter.Page.Limit(), filter.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e             domain.AuditEntry
			ts            string
			before, after sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Actor, &ts, &e.Action, &e.Keyspace, &e.Table, &e.Column,
			&before, &after); err != nil {
			return nil, 0, err
		}
		if t, perr := time.Parse(auditTimeLayout, ts); perr == nil {
			e.CreatedAt = t
		}
		if e.Before, err = parseSnapshot(before); err != nil {
			return nil, 0, fmt.Errorf("decode audit %d existing data: %w", e.ID, err)
		}
		if e.After, err = parseSnapshot(after); err != nil {
			return nil, 0, fmt.Errorf("decode audit %d updated data: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// snapshotJSON encodes a record snapshot; nil becomes SQL NULL.
func snapshotJSON(c *domain.ColumnRecord) (sql.NullString, error) {
	if c == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func parseSnapshot(s sql.NullString) (*domain.ColumnRecord, error) {
	if !s.Valid {
		return nil, nil
	}
	var c domain.ColumnRecord
	if err := json.Unmarshal([]byte(s.String), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ domain.AuditRepository = (*AuditRepo)(nil)
