package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/tasklist/internal/model"
)

// SQLiteBackend stores one row per item keyed by its 1-based position.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteBackend{db: db}, nil
}

// OpenSQLiteDB opens the database file without touching its schema.
func OpenSQLiteDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// OpenSQLite opens path and brings the schema up to date.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := OpenSQLiteDB(path)
	if err != nil {
		return nil, err
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	backend, err := NewSQLiteBackend(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return backend, nil
}

func (r *SQLiteBackend) Close() error {
	return r.db.Close()
}

func (r *SQLiteBackend) Load(ctx context.Context) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title, category, priority, due_date, status, created_at
		FROM items ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Item, 0)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Save replaces every row inside one transaction.
func (r *SQLiteBackend) Save(ctx context.Context, items []model.Item) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (position, title, category, priority, due_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err = stmt.ExecContext(ctx,
			i+1, item.Title, item.Category, int(item.Priority),
			nullDate(item.Due), string(item.Status), nullTimestamp(item.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert item %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func nullDate(v time.Time) any {
	if v.IsZero() {
		return nil
	}
	return v.Format(model.DueDateLayout)
}

func nullTimestamp(v time.Time) any {
	if v.IsZero() {
		return nil
	}
	return v.Format(model.CreatedAtLayout)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanItem normalizes rows the way the JSON decoder does: an out-of-range
// priority becomes the default and legacy status markers are accepted.
func scanItem(s scanner) (model.Item, error) {
	var title, category string
	var priority int
	var status string
	var due sql.NullString
	var created sql.NullString
	if err := s.Scan(&title, &category, &priority, &due, &status, &created); err != nil {
		return model.Item{}, err
	}
	prio := model.Priority(priority)
	if !prio.IsValid() {
		prio = model.DefaultPriority
	}
	var dueAt time.Time
	if due.Valid && due.String != "" {
		d, err := model.ParseDueDate(due.String)
		if err != nil {
			return model.Item{}, err
		}
		dueAt = d
	}
	out := model.New(title, category, prio, dueAt)
	if st, err := model.ParseStatus(status); err == nil {
		out.Status = st
	}
	if created.Valid && created.String != "" {
		tm, err := time.ParseInLocation(model.CreatedAtLayout, created.String, time.Local)
		if err != nil {
			return model.Item{}, err
		}
		out.CreatedAt = tm
	}
	return out, nil
}
