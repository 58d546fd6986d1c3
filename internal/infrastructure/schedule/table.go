// Package schedule загружает таблицу обработки: метка классификатора -> рекомендация.
package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// ErrEmptyTable таблица обработки не содержит ни одной метки
var ErrEmptyTable = errors.New("spray schedule is empty")

// Table неизменяемая таблица обработки. После загрузки только читается,
// поэтому безопасна для конкурентного использования без блокировок.
type Table struct {
	entries map[string]entity.Recommendation
}

// Load читает таблицу из JSON-файла вида {"<label>": {disease, spray, spray_time, servo_index, chemical}}
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spray schedule: %w", err)
	}
	table, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("spray schedule %s: %w", path, err)
	}
	return table, nil
}

// Parse разбирает таблицу и проверяет каждую запись
func Parse(raw []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var entries map[string]entity.Recommendation
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}

	for label, rec := range entries {
		if label == "" {
			return nil, errors.New("empty class label")
		}
		if rec.SprayTime < 0 {
			return nil, fmt.Errorf("%s: negative spray_time %d", label, rec.SprayTime)
		}
		if rec.ServoIndex != nil && *rec.ServoIndex < 0 {
			return nil, fmt.Errorf("%s: negative servo_index %d", label, *rec.ServoIndex)
		}
		if rec.Disease == "" {
			rec.Disease = label
		}
		if rec.Chemical == "" {
			rec.Chemical = "None"
		}
		entries[label] = rec
	}

	return &Table{entries: entries}, nil
}

// Resolve возвращает рекомендацию для метки; неизвестная метка даёт Unknown
func (t *Table) Resolve(label string) entity.Recommendation {
	rec, ok := t.entries[label]
	if !ok {
		return entity.UnknownRecommendation()
	}
	return rec.Clone()
}

// Labels возвращает известные метки в алфавитном порядке
func (t *Table) Labels() []string {
	labels := make([]string, 0, len(t.entries))
	for label := range t.entries {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

var _ port.TreatmentTable = (*Table)(nil)
