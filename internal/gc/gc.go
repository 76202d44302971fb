// Package gc reclaims on-disk chunk directories and stray temp files left
// behind by the upload coordinator. Apart from the coordinator removing a
// session's chunk directory once it has assembled it, gc is the only code
// that deletes chunk directories; it skips sessions in the Active set, so a
// collection pass never races an assembly in progress.
package gc

import (
	"context"
	"time"

	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"github.com/abdul-hamid-achik/videopipeline/internal/metrics"
	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
	"github.com/abdul-hamid-achik/videopipeline/internal/storage"
)

const (
	TempTTL          = 5 * time.Minute
	OrphanTTL        = 30 * time.Minute
	SweepInterval    = 5 * time.Minute
	LowSpaceBytes    = 100 * 1024 * 1024
	SessionTTL       = 24 * time.Hour
)

// Result tallies one sweep's reclamation, returned to callers (including
// the operator-facing /storage/cleanup endpoint) that need a count.
type Result struct {
	TempFilesRemoved int
	SessionDirsRemoved int
}

type Collector struct {
	disk  *storage.Disk
	store statestore.Store
}

func New(disk *storage.Disk, store statestore.Store) *Collector {
	return &Collector{disk: disk, store: store}
}

// Start runs an immediate sweep, then sweeps again every SweepInterval
// until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	c.RunOnce(ctx, "startup")

	ticker := time.NewTicker(SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.RunOnce(ctx, "periodic")
			}
		}
	}()
}

// MaybeRunIfLowSpace runs a synchronous sweep when free space is below
// LowSpaceBytes, as required before every chunk write and as the
// coordinator's response to a disk-full signal.
func (c *Collector) MaybeRunIfLowSpace(ctx context.Context) Result {
	free, err := c.disk.FreeBytes()
	if err != nil || free >= LowSpaceBytes {
		return Result{}
	}
	return c.RunOnce(ctx, "low_space")
}

// RunOnce sweeps stray temp files and orphaned/expired session chunk
// directories. It never touches a session in the Active set, which keeps
// it safe to run concurrently with assembly.
func (c *Collector) RunOnce(ctx context.Context, trigger string) Result {
	log := logger.FromContext(ctx)
	metrics.GCRunsTotal.WithLabelValues(trigger).Inc()

	var res Result
	now := time.Now()

	tempFiles, err := c.disk.ListTempFiles()
	if err != nil {
		log.Warn("gc: list temp files failed", "error", err)
	}
	for _, f := range tempFiles {
		info, err := f.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < TempTTL {
			continue
		}
		if err := c.disk.RemoveTempFile(f.Name()); err != nil {
			log.Warn("gc: remove temp file failed", "file", f.Name(), "error", err)
			continue
		}
		res.TempFilesRemoved++
	}

	active := c.store.ListActiveSessionIDs(ctx)

	dirs, err := c.disk.ListSessionDirs()
	if err != nil {
		log.Warn("gc: list session dirs failed", "error", err)
	}
	for _, d := range dirs {
		sessionID := d.Name()
		if active[sessionID] {
			continue
		}

		if sess, ok := c.store.GetSession(ctx, sessionID); ok {
			if now.Before(sess.ExpiresAt) {
				continue
			}
		} else {
			mtime, err := c.disk.SessionDirModTime(sessionID)
			if err != nil || now.Sub(mtime) < OrphanTTL {
				continue
			}
		}

		if err := c.disk.RemoveSessionDir(sessionID); err != nil {
			log.Warn("gc: remove session dir failed", "session_id", sessionID, "error", err)
			continue
		}
		res.SessionDirsRemoved++
	}

	if res.TempFilesRemoved > 0 {
		metrics.GCReclaimedTotal.WithLabelValues("temp_file").Add(float64(res.TempFilesRemoved))
	}
	if res.SessionDirsRemoved > 0 {
		metrics.GCReclaimedTotal.WithLabelValues("session_dir").Add(float64(res.SessionDirsRemoved))
	}
	if res.TempFilesRemoved > 0 || res.SessionDirsRemoved > 0 {
		log.Info("gc sweep reclaimed", "trigger", trigger, "temp_files", res.TempFilesRemoved, "session_dirs", res.SessionDirsRemoved)
	}

	return res
}
