package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
)

var ErrNotFound = goerr.New("export record not found")

// DefaultDir is the directory used when none is configured
const DefaultDir = "jarvis_data"

const (
	contentExt = ".txt"
	metaExt    = ".meta.json"
)

// File writes each record as a plain text transcript plus a small JSON
// metadata file next to it.
type File struct {
	dir string
}

var _ interfaces.ExportRepository = &File{}

type metadata struct {
	Name           string    `json:"name"`
	ConversationID string    `json:"conversation_id"`
	EntryCount     int       `json:"entry_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// New creates the directory if needed
func New(dir string) (*File, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create export directory", goerr.V("dir", dir))
	}
	return &File{dir: dir}, nil
}

// Dir returns the export directory
func (f *File) Dir() string {
	return f.dir
}

func (f *File) contentPath(name string) string {
	return filepath.Join(f.dir, name+contentExt)
}

func (f *File) metaPath(name string) string {
	return filepath.Join(f.dir, name+metaExt)
}

func (f *File) Put(ctx context.Context, record *model.ExportRecord) error {
	if record == nil {
		return goerr.New("export record is nil")
	}
	if err := model.ValidateExportName(record.Name); err != nil {
		return err
	}

	meta, err := json.MarshalIndent(metadata{
		Name:           record.Name,
		ConversationID: record.ConversationID.String(),
		EntryCount:     record.EntryCount,
		CreatedAt:      record.CreatedAt,
	}, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal export metadata", goerr.V(model.ExportNameKey, record.Name))
	}

	// Content first so a listed record always has its transcript
	if err := writeAtomic(f.contentPath(record.Name), []byte(record.Content)); err != nil {
		return goerr.Wrap(err, "failed to write transcript", goerr.V(model.ExportNameKey, record.Name))
	}
	if err := writeAtomic(f.metaPath(record.Name), meta); err != nil {
		return goerr.Wrap(err, "failed to write export metadata", goerr.V(model.ExportNameKey, record.Name))
	}

	return nil
}

func (f *File) Get(ctx context.Context, name string) (*model.ExportRecord, error) {
	if err := model.ValidateExportName(name); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.metaPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "export record not found", goerr.V(model.ExportNameKey, name))
		}
		return nil, goerr.Wrap(err, "failed to read export metadata", goerr.V(model.ExportNameKey, name))
	}

	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal export metadata", goerr.V(model.ExportNameKey, name))
	}

	content, err := os.ReadFile(f.contentPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "transcript file is missing", goerr.V(model.ExportNameKey, name))
		}
		return nil, goerr.Wrap(err, "failed to read transcript", goerr.V(model.ExportNameKey, name))
	}

	return &model.ExportRecord{
		Name:           meta.Name,
		ConversationID: model.ConversationID(meta.ConversationID),
		EntryCount:     meta.EntryCount,
		Content:        string(content),
		CreatedAt:      meta.CreatedAt,
	}, nil
}

func (f *File) List(ctx context.Context) ([]*model.ExportRecord, error) {
	dirEntries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read export directory", goerr.V("dir", f.dir))
	}

	records := make([]*model.ExportRecord, 0)
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), metaExt) {
			continue
		}
		name := strings.TrimSuffix(de.Name(), metaExt)

		record, err := f.Get(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Name < records[j].Name
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (f *File) Close() error {
	return nil
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
