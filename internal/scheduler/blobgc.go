// Package scheduler — фоновые задачи по расписанию.
package scheduler

import (
	"BlogHub/internal/storage"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MediaRefs — id файлов, на которые ещё ссылаются записи.
type MediaRefs interface {
	MediaIDs(ctx context.Context) ([]string, error)
}

// BlobGC удаляет файлы, на которые не ссылается ни одна запись и которые старше grace.
// grace защищает файлы, загруженные, но ещё не привязанные к записи.
type BlobGC struct {
	store  storage.Store
	refs   MediaRefs
	grace  time.Duration
	logger *zap.SugaredLogger
	now    func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// Result — итоги одного прохода.
type Result struct {
	Scanned int
	Deleted int
	Failed  int
}

func NewBlobGC(store storage.Store, refs MediaRefs, grace time.Duration, logger *zap.SugaredLogger) *BlobGC {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &BlobGC{store: store, refs: refs, grace: grace, logger: logger, now: time.Now}
}

// RunOnce выполняет один проход сборки мусора.
func (g *BlobGC) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	ids, err := g.refs.MediaIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("load media refs: %w", err)
	}
	referenced := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		referenced[id] = struct{}{}
	}

	files, err := g.store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list blobs: %w", err)
	}
	cutoff := g.now().Add(-g.grace)

	for _, f := range files {
		res.Scanned++
		if _, ok := referenced[f.ID]; ok {
			continue
		}
		if f.CreatedAt.After(cutoff) {
			continue
		}
		if err := g.store.Delete(ctx, f.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			res.Failed++
			g.logger.Errorw("blob gc: delete failed", "media_id", f.ID, "error", err)
			continue
		}
		res.Deleted++
	}

	g.logger.Infow("blob gc finished", "scanned", res.Scanned, "deleted", res.Deleted, "failed", res.Failed)
	return res, nil
}

// Start запускает проход по cron-расписанию (например "@every 6h" или "0 3 * * *").
func (g *BlobGC) Start(schedule string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cron != nil {
		return errors.New("blob gc already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := g.RunOnce(ctx); err != nil {
			g.logger.Errorw("blob gc failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid blob gc schedule %q: %w", schedule, err)
	}
	c.Start()
	g.cron = c
	g.logger.Infow("blob gc scheduled", "schedule", schedule, "grace", g.grace)
	return nil
}

// Stop останавливает расписание и ждёт завершения текущего прохода.
func (g *BlobGC) Stop() {
	g.mu.Lock()
	c := g.cron
	g.cron = nil
	g.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
