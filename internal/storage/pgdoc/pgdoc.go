// Package pgdoc implements the document store on PostgreSQL: one JSONB
// document per row. Update and Apply run inside a transaction with a
// row-level lock, which gives the serialized single-document
// read-modify-write the engine's consistency contract requires.
package pgdoc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/socialwall/interaction-service/internal/config"
	"github.com/socialwall/interaction-service/internal/storage"
)

func DB(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)
	return pgxpool.New(ctx, connString)
}

// Migrate creates the documents table and its feed indexes.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			doc JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS documents_created_at_idx
			ON documents (collection, (doc->>'created_at') DESC);
		CREATE INDEX IF NOT EXISTS documents_author_created_at_idx
			ON documents (collection, (doc->>'author_id'), (doc->>'created_at') DESC);
	`)
	return err
}

type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, coll string, doc storage.Document) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err := s.db.Exec(
		ctx,
		"INSERT INTO documents(collection, id, doc) VALUES($1, $2, $3)",
		coll,
		id,
		raw,
	); err != nil {
		return "", err
	}

	return id, nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (storage.Document, error) {
	var raw []byte
	err := s.db.QueryRow(
		ctx,
		"SELECT doc FROM documents WHERE collection = $1 AND id = $2",
		coll,
		id,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return decode(raw)
}

func (s *Store) Query(ctx context.Context, coll string, q storage.Query) ([]storage.Entry, error) {
	sql := "SELECT id, doc FROM documents WHERE collection = $1"
	args := []any{coll}

	if q.Filter != nil {
		sql += fmt.Sprintf(" AND doc->>$%d = $%d", len(args)+1, len(args)+2)
		args = append(args, q.Filter.Field, fmt.Sprint(q.Filter.Value))
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		key := fmt.Sprintf("doc->>$%d", len(args)+1)
		if q.OrderAsTime {
			key = "(" + key + ")::timestamptz"
		}
		// Order key plus id keeps results stable under equal sort keys.
		sql += fmt.Sprintf(" ORDER BY %s %s, id %s", key, dir, dir)
		args = append(args, q.OrderBy)
	}
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []storage.Entry
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, storage.Entry{ID: id, Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *Store) Update(ctx context.Context, coll, id string, ops ...storage.Op) error {
	return s.apply(ctx, coll, id, func(storage.Document) ([]storage.Op, error) {
		return ops, nil
	})
}

func (s *Store) Apply(ctx context.Context, coll, id string, fn func(storage.Document) ([]storage.Op, error)) error {
	return s.apply(ctx, coll, id, fn)
}

func (s *Store) apply(ctx context.Context, coll, id string, fn func(storage.Document) ([]storage.Op, error)) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(
		ctx,
		"SELECT doc FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE",
		coll,
		id,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return err
	}

	doc, err := decode(raw)
	if err != nil {
		return err
	}

	ops, err := fn(storage.CloneDocument(doc))
	if err != nil {
		return err
	}
	if err := storage.ApplyOps(doc, ops); err != nil {
		return err
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		"UPDATE documents SET doc = $1 WHERE collection = $2 AND id = $3",
		updated,
		coll,
		id,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	tag, err := s.db.Exec(
		ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2",
		coll,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func decode(raw []byte) (storage.Document, error) {
	var doc storage.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

var _ storage.Store = (*Store)(nil)
