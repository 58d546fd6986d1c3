package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

const createClickHouseSprayLogSQL = `
	CREATE TABLE IF NOT EXISTS spray_log (
		seq             UInt64,
		id              String,
		timestamp       DateTime64(3, 'UTC'),
		source          LowCardinality(String),
		class_id        String,
		disease         String,
		confidence      Float64,
		spray           Bool,
		spray_time      Int32,
		servo_index     Nullable(Int32),
		chemical        String,
		device_response String
	) ENGINE = MergeTree()
	ORDER BY seq
`

// ClickHouseConfig параметры подключения к ClickHouse
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseAuditLog журнал решений в ClickHouse.
// seq выдаёт единственный писатель под мьютексом, поэтому процесс должен быть один.
type ClickHouseAuditLog struct {
	mu   sync.Mutex
	conn driver.Conn
	log  *slog.Logger
	seq  uint64
	now  func() time.Time
}

// NewClickHouseAuditLog подключается, создаёт таблицу и читает последний seq
func NewClickHouseAuditLog(ctx context.Context, cfg ClickHouseConfig, log *slog.Logger) (*ClickHouseAuditLog, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, createClickHouseSprayLogSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create spray_log: %w", err)
	}

	var maxSeq uint64
	if err := conn.QueryRow(ctx, "SELECT max(seq) FROM spray_log").Scan(&maxSeq); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read last seq: %w", err)
	}

	log.Info("connected to ClickHouse", slog.String("addr", cfg.Addr), slog.Uint64("seq", maxSeq))

	return &ClickHouseAuditLog{conn: conn, log: log, seq: maxSeq, now: time.Now}, nil
}

// Append вставляет запись со следующим seq
func (s *ClickHouseAuditLog) Append(ctx context.Context, entry entity.LogEntry) (entity.LogEntry, error) {
	stored := fillEntry(entry, s.now)

	s.mu.Lock()
	defer s.mu.Unlock()

	var servo *int32
	if stored.ServoIndex != nil {
		v := int32(*stored.ServoIndex)
		servo = &v
	}

	query := `
		INSERT INTO spray_log (seq, id, timestamp, source, class_id, disease, confidence, spray, spray_time, servo_index, chemical, device_response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := s.conn.Exec(ctx, query,
		s.seq+1,
		stored.ID,
		stored.Timestamp,
		stored.Source,
		stored.ClassID,
		stored.Disease,
		stored.Confidence,
		stored.Spray,
		int32(stored.SprayTime),
		servo,
		stored.Chemical,
		stored.DeviceResponse,
	)
	if err != nil {
		return entity.LogEntry{}, fmt.Errorf("failed to insert spray log entry: %w", err)
	}
	s.seq++

	return stored, nil
}

// Load возвращает последние last записей по возрастанию seq
func (s *ClickHouseAuditLog) Load(ctx context.Context, last int) ([]entity.LogEntry, error) {
	const columns = `seq, id, timestamp, source, class_id, disease, confidence, spray, spray_time, servo_index, chemical, device_response`

	query := fmt.Sprintf("SELECT %s FROM spray_log ORDER BY seq", columns)
	args := []any{}
	if last >= 0 {
		query = fmt.Sprintf("SELECT %s FROM (SELECT %s FROM spray_log ORDER BY seq DESC LIMIT ?) ORDER BY seq", columns, columns)
		args = append(args, last)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spray log: %w", err)
	}
	defer rows.Close()

	entries := make([]entity.LogEntry, 0)
	for rows.Next() {
		var (
			seq       uint64
			e         entity.LogEntry
			sprayTime int32
			servo     *int32
		)
		if err := rows.Scan(&seq, &e.ID, &e.Timestamp, &e.Source, &e.ClassID, &e.Disease, &e.Confidence,
			&e.Spray, &sprayTime, &servo, &e.Chemical, &e.DeviceResponse); err != nil {
			return nil, fmt.Errorf("failed to scan spray log entry: %w", err)
		}
		e.SprayTime = int(sprayTime)
		if servo != nil {
			e.ServoIndex = entity.IntPtr(int(*servo))
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close закрывает соединение
func (s *ClickHouseAuditLog) Close() error {
	return s.conn.Close()
}

var _ port.AuditLog = (*ClickHouseAuditLog)(nil)
