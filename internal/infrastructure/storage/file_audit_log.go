package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// ErrLogClosed журнал уже закрыт
var ErrLogClosed = errors.New("audit log is closed")

// FileAuditLog журнал решений в JSONL-файле: одна запись на строку.
// Запись сериализована мьютексом, копия журнала держится в памяти для чтения.
type FileAuditLog struct {
	mu      sync.RWMutex
	path    string
	log     *slog.Logger
	file    *os.File
	writer  *bufio.Writer
	entries []entity.LogEntry
	now     func() time.Time
}

// NewFileAuditLog открывает (или создаёт) файл журнала и читает существующие записи
func NewFileAuditLog(path string, log *slog.Logger) (*FileAuditLog, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	fl := &FileAuditLog{path: path, log: log, file: f, now: time.Now}
	if err := fl.load(); err != nil {
		f.Close()
		return nil, err
	}
	return fl, nil
}

func (fl *FileAuditLog) load() error {
	scanner := bufio.NewScanner(fl.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var entry entity.LogEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		entry.Timestamp = entry.Timestamp.UTC()
		fl.entries = append(fl.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if _, err := fl.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	fl.writer = bufio.NewWriter(fl.file)
	fl.log.Info("audit log loaded", slog.String("path", fl.path), slog.Int("records", len(fl.entries)))
	return nil
}

// Append дописывает запись; id и timestamp заполняются, если пусты
func (fl *FileAuditLog) Append(ctx context.Context, entry entity.LogEntry) (entity.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return entity.LogEntry{}, err
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file == nil {
		return entity.LogEntry{}, ErrLogClosed
	}

	stored := fillEntry(entry, fl.now)

	payload, err := json.Marshal(stored)
	if err != nil {
		return entity.LogEntry{}, err
	}
	if _, err := fl.writer.Write(payload); err != nil {
		return entity.LogEntry{}, err
	}
	if err := fl.writer.WriteByte('\n'); err != nil {
		return entity.LogEntry{}, err
	}
	if err := fl.writer.Flush(); err != nil {
		return entity.LogEntry{}, err
	}
	if err := fl.file.Sync(); err != nil {
		return entity.LogEntry{}, err
	}

	fl.entries = append(fl.entries, stored)
	fl.log.Debug("audit entry appended", slog.String("id", stored.ID), slog.String("source", stored.Source))

	return stored.Clone(), nil
}

// Load возвращает последние last записей в порядке добавления
func (fl *FileAuditLog) Load(ctx context.Context, last int) ([]entity.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fl.mu.RLock()
	defer fl.mu.RUnlock()

	return tail(fl.entries, last), nil
}

// Close сбрасывает буфер и закрывает файл
func (fl *FileAuditLog) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file == nil {
		return nil
	}
	flushErr := fl.writer.Flush()
	closeErr := fl.file.Close()
	fl.file = nil

	return errors.Join(flushErr, closeErr)
}

// tail копирует последние last элементов; last < 0 означает все
func tail(entries []entity.LogEntry, last int) []entity.LogEntry {
	start := 0
	if last >= 0 && last < len(entries) {
		start = len(entries) - last
	}
	out := make([]entity.LogEntry, 0, len(entries)-start)
	for _, e := range entries[start:] {
		out = append(out, e.Clone())
	}
	return out
}

var _ port.AuditLog = (*FileAuditLog)(nil)
