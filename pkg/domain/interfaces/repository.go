package interfaces

import (
	"context"

	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

// ExportRepository stores transcripts that were explicitly exported.
// Conversations themselves live only in memory.
type ExportRepository interface {
	// Put stores the record, replacing an existing record with the same name
	Put(ctx context.Context, record *model.ExportRecord) error

	// Get retrieves a record by name
	Get(ctx context.Context, name string) (*model.ExportRecord, error)

	// List returns all records ordered by CreatedAt, newest first
	List(ctx context.Context) ([]*model.ExportRecord, error)

	Close() error
}
