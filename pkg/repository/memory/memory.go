package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

var ErrNotFound = goerr.New("export record not found")

// Memory keeps exported transcripts in process. Records are lost on exit.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*model.ExportRecord
}

var _ interfaces.ExportRepository = &Memory{}

func New() *Memory {
	return &Memory{
		records: make(map[string]*model.ExportRecord),
	}
}

func copyRecord(r *model.ExportRecord) *model.ExportRecord {
	copied := *r
	return &copied
}

func (m *Memory) Put(ctx context.Context, record *model.ExportRecord) error {
	if record == nil {
		return goerr.New("export record is nil")
	}
	if err := model.ValidateExportName(record.Name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.Name] = copyRecord(record)
	return nil
}

func (m *Memory) Get(ctx context.Context, name string) (*model.ExportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.records[name]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "export record not found", goerr.V(model.ExportNameKey, name))
	}

	return copyRecord(record), nil
}

func (m *Memory) List(ctx context.Context) ([]*model.ExportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*model.ExportRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, copyRecord(record))
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Name < records[j].Name
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (m *Memory) Close() error {
	return nil
}
