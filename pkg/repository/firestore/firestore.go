package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrNotFound = goerr.New("export record not found")

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ExportRepository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

type exportDocument struct {
	Name           string    `firestore:"name"`
	ConversationID string    `firestore:"conversation_id"`
	EntryCount     int       `firestore:"entry_count"`
	Content        string    `firestore:"content"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) exportsCollection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_exports"
	}
	return "exports"
}

func recordToDocument(record *model.ExportRecord) *exportDocument {
	return &exportDocument{
		Name:           record.Name,
		ConversationID: record.ConversationID.String(),
		EntryCount:     record.EntryCount,
		Content:        record.Content,
		CreatedAt:      record.CreatedAt,
	}
}

func documentToRecord(doc *exportDocument) *model.ExportRecord {
	return &model.ExportRecord{
		Name:           doc.Name,
		ConversationID: model.ConversationID(doc.ConversationID),
		EntryCount:     doc.EntryCount,
		Content:        doc.Content,
		CreatedAt:      doc.CreatedAt,
	}
}

func (f *Firestore) Put(ctx context.Context, record *model.ExportRecord) error {
	if record == nil {
		return goerr.New("export record is nil")
	}
	if err := model.ValidateExportName(record.Name); err != nil {
		return err
	}

	docRef := f.client.Collection(f.exportsCollection()).Doc(record.Name)
	if _, err := docRef.Set(ctx, recordToDocument(record)); err != nil {
		return goerr.Wrap(err, "failed to put export record", goerr.V(model.ExportNameKey, record.Name))
	}

	return nil
}

func (f *Firestore) Get(ctx context.Context, name string) (*model.ExportRecord, error) {
	if err := model.ValidateExportName(name); err != nil {
		return nil, err
	}

	docSnap, err := f.client.Collection(f.exportsCollection()).Doc(name).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "export record not found", goerr.V(model.ExportNameKey, name))
		}
		return nil, goerr.Wrap(err, "failed to get export record", goerr.V(model.ExportNameKey, name))
	}

	var doc exportDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode export record", goerr.V(model.ExportNameKey, name))
	}

	return documentToRecord(&doc), nil
}

func (f *Firestore) List(ctx context.Context) ([]*model.ExportRecord, error) {
	iter := f.client.Collection(f.exportsCollection()).Documents(ctx)
	defer iter.Stop()

	records := make([]*model.ExportRecord, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate export records")
		}

		var doc exportDocument
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode export record", goerr.V("docID", docSnap.Ref.ID))
		}
		records = append(records, documentToRecord(&doc))
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Name < records[j].Name
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
