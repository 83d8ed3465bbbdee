package commands

import (
	"BlogHub/internal/config"
	"BlogHub/internal/repo"
	"BlogHub/internal/scheduler"
	"BlogHub/internal/storage"
	"context"
	"fmt"
	"time"
)

type gcBlobsCmd struct{}

func (gcBlobsCmd) Name() string        { return "gc-blobs" }
func (gcBlobsCmd) Description() string { return "Delete uploaded files no blog refers to" }
func (gcBlobsCmd) Usage() string       { return "gc-blobs [grace, e.g. 1h]" }

func (gcBlobsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	grace := cfg.BlobGCGrace
	switch len(args) {
	case 0:
	case 1:
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return ErrUsage
		}
		grace = d
	default:
		return ErrUsage
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := storage.NewStore(ctx, cfg.BlobBackend, cfg.BlobBucket, cfg.S3Region, db)
	if err != nil {
		return err
	}

	res, err := scheduler.NewBlobGC(store, repo.NewBlogRepository(db), grace, Logger).RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Scanned %d, deleted %d, failed %d\n", res.Scanned, res.Deleted, res.Failed)
	if res.Failed > 0 {
		return fmt.Errorf("%d files could not be deleted", res.Failed)
	}
	return nil
}

func init() { RegisterCmd(gcBlobsCmd{}) }
