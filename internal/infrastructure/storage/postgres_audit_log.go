package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

const createSprayLogSQL = `
    CREATE TABLE IF NOT EXISTS spray_log (
        seq             BIGSERIAL PRIMARY KEY,
        id              TEXT NOT NULL UNIQUE,
        ts              TIMESTAMPTZ NOT NULL,
        source          TEXT NOT NULL,
        class_id        TEXT NOT NULL,
        disease         TEXT NOT NULL,
        confidence      DOUBLE PRECISION NOT NULL,
        spray           BOOLEAN NOT NULL,
        spray_time      INTEGER NOT NULL,
        servo_index     INTEGER,
        chemical        TEXT NOT NULL,
        device_response TEXT NOT NULL DEFAULT ''
    )
`

const insertSprayLogSQL = `
    INSERT INTO spray_log (id, ts, source, class_id, disease, confidence, spray, spray_time, servo_index, chemical, device_response)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// LIMIT NULL в PostgreSQL означает отсутствие ограничения
const selectSprayLogSQL = `
    SELECT id, ts, source, class_id, disease, confidence, spray, spray_time, servo_index, chemical, device_response
    FROM (
        SELECT * FROM spray_log ORDER BY seq DESC LIMIT $1
    ) recent
    ORDER BY seq ASC
`

// PostgresAuditLog журнал решений в таблице spray_log; порядок задаёт BIGSERIAL seq
type PostgresAuditLog struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresAuditLog подключается к базе и создаёт таблицу при необходимости
func NewPostgresAuditLog(ctx context.Context, databaseURL string) (*PostgresAuditLog, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createSprayLogSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create spray_log: %w", err)
	}
	return &PostgresAuditLog{pool: pool, now: time.Now}, nil
}

// Append вставляет запись одной транзакцией
func (s *PostgresAuditLog) Append(ctx context.Context, entry entity.LogEntry) (entity.LogEntry, error) {
	stored := fillEntry(entry, s.now)

	_, err := s.pool.Exec(ctx, insertSprayLogSQL,
		stored.ID,
		stored.Timestamp,
		stored.Source,
		stored.ClassID,
		stored.Disease,
		stored.Confidence,
		stored.Spray,
		stored.SprayTime,
		stored.ServoIndex,
		stored.Chemical,
		stored.DeviceResponse,
	)
	if err != nil {
		return entity.LogEntry{}, fmt.Errorf("insert spray_log: %w", err)
	}
	return stored, nil
}

// Load возвращает последние last записей по возрастанию seq
func (s *PostgresAuditLog) Load(ctx context.Context, last int) ([]entity.LogEntry, error) {
	var limit *int
	if last >= 0 {
		limit = &last
	}

	rows, err := s.pool.Query(ctx, selectSprayLogSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query spray_log: %w", err)
	}
	defer rows.Close()

	entries := make([]entity.LogEntry, 0)
	for rows.Next() {
		var e entity.LogEntry
		if err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&e.Source,
			&e.ClassID,
			&e.Disease,
			&e.Confidence,
			&e.Spray,
			&e.SprayTime,
			&e.ServoIndex,
			&e.Chemical,
			&e.DeviceResponse,
		); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close освобождает пул соединений
func (s *PostgresAuditLog) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// fillEntry копирует запись и заполняет пустые id и timestamp
func fillEntry(entry entity.LogEntry, now func() time.Time) entity.LogEntry {
	stored := entry.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = now()
	}
	stored.Timestamp = stored.Timestamp.UTC()
	return stored
}

var _ port.AuditLog = (*PostgresAuditLog)(nil)
