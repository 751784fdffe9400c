package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"

	_ "modernc.org/sqlite"
)

var ErrNotFound = goerr.New("export record not found")

// timeLayout has a fixed width so created_at sorts chronologically as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite stores exported transcripts in a single table
type SQLite struct {
	db   *sql.DB
	path string
}

var _ interfaces.ExportRepository = &SQLite{}

const schema = `CREATE TABLE IF NOT EXISTS exports (
	name TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	entry_count INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

// New opens (or creates) the database at path. ":memory:" opens a private
// in-memory database.
func New(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	// One connection keeps ":memory:" databases shared and serializes writes
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize sqlite schema", goerr.V("path", path))
	}

	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Put(ctx context.Context, record *model.ExportRecord) error {
	if record == nil {
		return goerr.New("export record is nil")
	}
	if err := model.ValidateExportName(record.Name); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO exports
		(name, conversation_id, entry_count, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			entry_count = excluded.entry_count,
			content = excluded.content,
			created_at = excluded.created_at`,
		record.Name,
		record.ConversationID.String(),
		record.EntryCount,
		record.Content,
		record.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put export record", goerr.V(model.ExportNameKey, record.Name))
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*model.ExportRecord, error) {
	var (
		record         model.ExportRecord
		conversationID string
		createdAt      string
	)
	if err := row.Scan(&record.Name, &conversationID, &record.EntryCount, &record.Content, &createdAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid created_at in export record",
			goerr.V(model.ExportNameKey, record.Name), goerr.V("created_at", createdAt))
	}
	record.ConversationID = model.ConversationID(conversationID)
	record.CreatedAt = t

	return &record, nil
}

func (s *SQLite) Get(ctx context.Context, name string) (*model.ExportRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, conversation_id, entry_count, content, created_at
		FROM exports WHERE name = ?`, name)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "export record not found", goerr.V(model.ExportNameKey, name))
		}
		return nil, goerr.Wrap(err, "failed to get export record", goerr.V(model.ExportNameKey, name))
	}

	return record, nil
}

func (s *SQLite) List(ctx context.Context) ([]*model.ExportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, conversation_id, entry_count, content, created_at
		FROM exports ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list export records")
	}
	defer rows.Close()

	records := make([]*model.ExportRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan export record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate export records")
	}

	return records, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
