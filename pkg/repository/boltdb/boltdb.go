package boltdb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = goerr.New("export record not found")

const (
	bucketExports = "exports"

	openTimeout = time.Second
)

// Bolt keeps exported transcripts in a single bbolt bucket keyed by name
type Bolt struct {
	db *bolt.DB
}

var _ interfaces.ExportRepository = &Bolt{}

type exportValue struct {
	ConversationID string    `json:"conversation_id"`
	EntryCount     int       `json:"entry_count"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// New opens (or creates) the database file at path. The file is locked
// while open, so a second process fails after a short timeout.
func New(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bolt database", goerr.V("path", path))
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketExports))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize bolt bucket", goerr.V("path", path))
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Put(ctx context.Context, record *model.ExportRecord) error {
	if record == nil {
		return goerr.New("export record is nil")
	}
	if err := model.ValidateExportName(record.Name); err != nil {
		return err
	}

	data, err := json.Marshal(exportValue{
		ConversationID: record.ConversationID.String(),
		EntryCount:     record.EntryCount,
		Content:        record.Content,
		CreatedAt:      record.CreatedAt.UTC(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode export record", goerr.V(model.ExportNameKey, record.Name))
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketExports)).Put([]byte(record.Name), data)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put export record", goerr.V(model.ExportNameKey, record.Name))
	}
	return nil
}

func (b *Bolt) Get(ctx context.Context, name string) (*model.ExportRecord, error) {
	var record *model.ExportRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketExports)).Get([]byte(name))
		if v == nil {
			return goerr.Wrap(ErrNotFound, "export record not found", goerr.V(model.ExportNameKey, name))
		}
		r, err := decodeRecord(name, v)
		if err != nil {
			return err
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (b *Bolt) List(ctx context.Context) ([]*model.ExportRecord, error) {
	var records []*model.ExportRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketExports)).ForEach(func(k, v []byte) error {
			r, err := decodeRecord(string(k), v)
			if err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list export records")
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Name < records[j].Name
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (b *Bolt) Close() error {
	if err := b.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close bolt database")
	}
	return nil
}

// decodeRecord copies out of v, which is only valid inside the transaction
func decodeRecord(name string, v []byte) (*model.ExportRecord, error) {
	var ev exportValue
	if err := json.Unmarshal(v, &ev); err != nil {
		return nil, goerr.Wrap(err, "failed to decode export record", goerr.V(model.ExportNameKey, name))
	}
	return &model.ExportRecord{
		Name:           name,
		ConversationID: model.ConversationID(ev.ConversationID),
		EntryCount:     ev.EntryCount,
		Content:        ev.Content,
		CreatedAt:      ev.CreatedAt,
	}, nil
}
