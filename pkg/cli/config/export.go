package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/repository/boltdb"
	"github.com/secmon-lab/jarvis/pkg/repository/file"
	"github.com/secmon-lab/jarvis/pkg/repository/firestore"
	"github.com/secmon-lab/jarvis/pkg/repository/gcs"
	"github.com/secmon-lab/jarvis/pkg/repository/memory"
	"github.com/secmon-lab/jarvis/pkg/repository/sqlite"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Export backends
const (
	BackendFile      = "file"
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendBolt      = "bolt"
	BackendFirestore = "firestore"
	BackendGCS       = "gcs"
)

// Export holds CLI flags for the transcript export sink
type Export struct {
	backend    string
	dir        string
	dbPath     string
	projectID  string
	databaseID string
	collection string
	bucket     string
	prefix     string
}

// Flags returns CLI flags for export configuration
func (x *Export) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-backend",
			Category:    "Export",
			Usage:       "Export backend (file, memory, sqlite, bolt, firestore, gcs)",
			Value:       BackendFile,
			Sources:     cli.EnvVars("JARVIS_EXPORT_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "export-dir",
			Category:    "Export",
			Usage:       "Directory for the file backend, and default location of database files",
			Value:       file.DefaultDir,
			Sources:     cli.EnvVars("JARVIS_EXPORT_DIR"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "export-db",
			Category:    "Export",
			Usage:       "Database file for the sqlite and bolt backends (default: <export-dir>/jarvis.db)",
			Sources:     cli.EnvVars("JARVIS_EXPORT_DB"),
			Destination: &x.dbPath,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "Export",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("JARVIS_FIRESTORE_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "Export",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("JARVIS_FIRESTORE_DATABASE_ID"),
			Destination: &x.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Category:    "Export",
			Usage:       "Prefix for the Firestore exports collection",
			Sources:     cli.EnvVars("JARVIS_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &x.collection,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Category:    "Export",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Sources:     cli.EnvVars("JARVIS_GCS_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Category:    "Export",
			Usage:       "Object name prefix in the Cloud Storage bucket",
			Sources:     cli.EnvVars("JARVIS_GCS_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

func (x Export) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("dir", x.dir),
		slog.String("db", x.databasePath()),
		slog.String("firestore_project_id", x.projectID),
		slog.String("gcs_bucket", x.bucket),
	)
}

// Backend returns the configured backend type
func (x *Export) Backend() string {
	return x.backend
}

func (x *Export) databasePath() string {
	if x.dbPath != "" {
		return x.dbPath
	}
	dir := x.dir
	if dir == "" {
		dir = file.DefaultDir
	}
	name := "jarvis.db"
	if x.backend == BackendBolt {
		name = "jarvis.bolt"
	}
	return filepath.Join(dir, name)
}

// Configure initializes the export sink for the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (x *Export) Configure(ctx context.Context) (interfaces.ExportRepository, error) {
	switch x.backend {
	case BackendFile, "":
		dir := x.dir
		if dir == "" {
			dir = file.DefaultDir
		}
		repo, err := file.New(dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize file export repository")
		}
		logging.Default().Info("Using file export repository", "dir", dir)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory export repository (transcripts are lost on exit)")
		return memory.New(), nil

	case BackendSQLite:
		path := x.databasePath()
		repo, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite export repository")
		}
		logging.Default().Info("Using SQLite export repository", "path", path)
		return repo, nil

	case BackendBolt:
		path := x.databasePath()
		repo, err := boltdb.New(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize bolt export repository")
		}
		logging.Default().Info("Using bolt export repository", "path", path)
		return repo, nil

	case BackendFirestore:
		if x.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		var opts []firestore.Option
		if x.collection != "" {
			opts = append(opts, firestore.WithCollectionPrefix(x.collection))
		}
		repo, err := firestore.New(ctx, x.projectID, x.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore export repository")
		}
		logging.Default().Info("Using Firestore export repository",
			"project_id", x.projectID,
			"database_id", x.databaseID,
		)
		return repo, nil

	case BackendGCS:
		if x.bucket == "" {
			return nil, goerr.Wrap(ErrMissingOption, "gcs-bucket is required when using gcs backend",
				goerr.V(FlagKey, "gcs-bucket"))
		}
		var opts []gcs.Option
		if x.prefix != "" {
			opts = append(opts, gcs.WithPrefix(x.prefix))
		}
		repo, err := gcs.New(ctx, x.bucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize gcs export repository")
		}
		logging.Default().Info("Using Cloud Storage export repository", "bucket", x.bucket, "prefix", x.prefix)
		return repo, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid export backend", goerr.V(BackendKey, x.backend))
	}
}
