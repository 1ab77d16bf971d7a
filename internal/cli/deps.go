package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/vietddude/watermark/internal/core/checkpoint"
	"github.com/vietddude/watermark/internal/core/config"
	"github.com/vietddude/watermark/internal/extract"
	redisclient "github.com/vietddude/watermark/internal/infra/redis"
	"github.com/vietddude/watermark/internal/infra/storage"
	"github.com/vietddude/watermark/internal/infra/storage/file"
	"github.com/vietddude/watermark/internal/infra/storage/memory"
	"github.com/vietddude/watermark/internal/infra/storage/postgres"
)

// deps holds what a command opened and must release.
type deps struct {
	cfg     *config.AppConfig
	db      *postgres.DB
	closers []io.Closer
}

func newDeps(cfg *config.AppConfig) *deps {
	return &deps{cfg: cfg}
}

// database connects once through the retrying connector and reuses the
// handle for the rest of the command.
func (d *deps) database(ctx context.Context) (*postgres.DB, error) {
	if d.db != nil {
		return d.db, nil
	}
	db, err := postgres.NewConnector(d.cfg.Database, d.cfg.Connect).Connect(ctx)
	if err != nil {
		return nil, err
	}
	d.db = db
	d.closers = append(d.closers, db)
	return db, nil
}

func (d *deps) checkpointRepo(ctx context.Context) (storage.CheckpointRepository, error) {
	switch d.cfg.Checkpoint.Backend {
	case config.BackendFile:
		return file.NewCheckpointRepo(d.cfg.Checkpoint.Path), nil
	case config.BackendMemory:
		return memory.NewCheckpointRepo(memory.NewMemoryStorage()), nil
	case config.BackendRedis:
		client, err := redisclient.NewClient(d.cfg.Redis)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, client)
		return client, nil
	case config.BackendPostgres:
		db, err := d.database(ctx)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			return nil, err
		}
		return postgres.NewCheckpointRepo(db), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", d.cfg.Checkpoint.Backend)
	}
}

func (d *deps) checkpoints(ctx context.Context) (*checkpoint.DefaultManager, error) {
	repo, err := d.checkpointRepo(ctx)
	if err != nil {
		return nil, err
	}
	return checkpoint.NewManager(repo, d.cfg.Checkpoint.Name), nil
}

// dryRunCheckpoints seeds an in-memory store from the configured one so
// cycles can advance without touching the persisted checkpoint.
func (d *deps) dryRunCheckpoints(ctx context.Context) (*checkpoint.DefaultManager, error) {
	persisted, err := d.checkpoints(ctx)
	if err != nil {
		return nil, err
	}
	current, err := persisted.Load(ctx)
	if err != nil {
		return nil, err
	}

	scratch := checkpoint.NewManager(memory.NewCheckpointRepo(memory.NewMemoryStorage()), persisted.Name())
	if current != nil {
		if err := scratch.Reset(ctx, *current); err != nil {
			return nil, err
		}
	}
	return scratch, nil
}

func (d *deps) source(ctx context.Context) (extract.Source, error) {
	switch d.cfg.Source.Type {
	case config.SourceStatic:
		return extract.NewFixtureSource(), nil
	case config.SourceJSON:
		return extract.NewJSONFileSource(d.cfg.Source.Path), nil
	case config.SourcePostgres:
		db, err := d.database(ctx)
		if err != nil {
			return nil, err
		}
		return postgres.NewRecordRepo(db, d.cfg.Source.Table), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", d.cfg.Source.Type)
	}
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i].Close()
	}
}
