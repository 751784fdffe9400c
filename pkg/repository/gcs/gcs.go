package gcs

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"google.golang.org/api/iterator"
)

var ErrNotFound = goerr.New("export record not found")

// Object metadata keys
const (
	metaConversationID = "conversation-id"
	metaEntryCount     = "entry-count"
	metaCreatedAt      = "created-at"
)

const objectExt = ".txt"

// GCS stores each transcript as a text object. Record fields other than the
// content are kept in the object metadata.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.ExportRepository = &GCS{}

type Option func(*GCS)

// WithPrefix stores objects under prefix, e.g. "jarvis/"
func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	g := &GCS{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GCS) objectName(name string) string {
	return g.prefix + name + objectExt
}

func (g *GCS) Put(ctx context.Context, record *model.ExportRecord) error {
	if record == nil {
		return goerr.New("export record is nil")
	}
	if err := model.ValidateExportName(record.Name); err != nil {
		return err
	}

	obj := g.client.Bucket(g.bucket).Object(g.objectName(record.Name))
	w := obj.NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	w.Metadata = map[string]string{
		metaConversationID: record.ConversationID.String(),
		metaEntryCount:     strconv.Itoa(record.EntryCount),
		metaCreatedAt:      record.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	if _, err := io.WriteString(w, record.Content); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write export object",
			goerr.V(model.ExportNameKey, record.Name), goerr.V("bucket", g.bucket))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize export object",
			goerr.V(model.ExportNameKey, record.Name), goerr.V("bucket", g.bucket))
	}

	return nil
}

func (g *GCS) Get(ctx context.Context, name string) (*model.ExportRecord, error) {
	if err := model.ValidateExportName(name); err != nil {
		return nil, err
	}

	obj := g.client.Bucket(g.bucket).Object(g.objectName(name))
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "export record not found", goerr.V(model.ExportNameKey, name))
		}
		return nil, goerr.Wrap(err, "failed to get export object attributes", goerr.V(model.ExportNameKey, name))
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "export record not found", goerr.V(model.ExportNameKey, name))
		}
		return nil, goerr.Wrap(err, "failed to open export object", goerr.V(model.ExportNameKey, name))
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read export object", goerr.V(model.ExportNameKey, name))
	}

	record := attrsToRecord(name, attrs)
	record.Content = string(content)
	return record, nil
}

func (g *GCS) List(ctx context.Context) ([]*model.ExportRecord, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: g.prefix})

	names := make([]string, 0)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate export objects", goerr.V("bucket", g.bucket))
		}

		name := strings.TrimPrefix(attrs.Name, g.prefix)
		if !strings.HasSuffix(name, objectExt) || strings.Contains(name, "/") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, objectExt))
	}

	records := make([]*model.ExportRecord, 0, len(names))
	for _, name := range names {
		record, err := g.Get(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, model.ErrInvalidExportName) {
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

func (g *GCS) Close() error {
	return g.client.Close()
}

func attrsToRecord(name string, attrs *storage.ObjectAttrs) *model.ExportRecord {
	record := &model.ExportRecord{
		Name:           name,
		ConversationID: model.ConversationID(attrs.Metadata[metaConversationID]),
		CreatedAt:      attrs.Created,
	}
	if n, err := strconv.Atoi(attrs.Metadata[metaEntryCount]); err == nil {
		record.EntryCount = n
	}
	if t, err := time.Parse(time.RFC3339Nano, attrs.Metadata[metaCreatedAt]); err == nil {
		record.CreatedAt = t
	}
	return record
}
