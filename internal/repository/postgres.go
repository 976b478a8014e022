package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionsTable = "client_sessions"

// DBStorage слот в таблице client_sessions, одна строка на slot_key
type DBStorage struct {
	pool *pgxpool.Pool
	key  string
	now  func() time.Time
}

func NewDBStorage(pool *pgxpool.Pool, key string) *DBStorage {
	return &DBStorage{
		pool: pool,
		key:  key,
		now:  time.Now,
	}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectSlotQuery(key string) squirrel.SelectBuilder {
	return psql.Select("payload").
		From(sessionsTable).
		Where(squirrel.Eq{"slot_key": key})
}

func upsertSlotQuery(key string, payload []byte, at time.Time) squirrel.InsertBuilder {
	return psql.Insert(sessionsTable).
		Columns("slot_key", "payload", "updated_at").
		Values(key, string(payload), at).
		Suffix("ON CONFLICT (slot_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at")
}

func deleteSlotQuery(key string) squirrel.DeleteBuilder {
	return psql.Delete(sessionsTable).Where(squirrel.Eq{"slot_key": key})
}

func (s *DBStorage) Load(ctx context.Context) ([]byte, error) {
	query, args, err := selectSlotQuery(s.key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var payload string
	if err = s.pool.QueryRow(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("select slot: %w", err)
	}
	if payload == "" {
		return nil, ErrSlotEmpty
	}
	return []byte(payload), nil
}

func (s *DBStorage) Store(ctx context.Context, payload []byte) error {
	query, args, err := upsertSlotQuery(s.key, payload, s.now().UTC()).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err = s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

func (s *DBStorage) Delete(ctx context.Context) error {
	query, args, err := deleteSlotQuery(s.key).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err = s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}
