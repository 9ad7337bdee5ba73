package session

import (
	"context"
	"time"

	"github.com/bassista/go_sole/internal/logger"
)

// PersistableSession is what the persistence scheduler needs.
type PersistableSession interface {
	IsDirty() bool
	Snapshot() Document
	ClearDirty()
	SetLastUpdate(ts int64)
}

// StartPersistenceScheduler periodically flushes a dirty session to disk.
// On ctx.Done it performs a final flush before returning. The returned
// channel is closed when the scheduler has shut down.
func StartPersistenceScheduler(ctx context.Context, sess PersistableSession, repo Saver, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("persist").Debugf("starting session persistence with interval: %v", interval)
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// Final flush with a fresh context so it completes.
				flushSession(context.Background(), sess, repo)
				logger.WithComponent("persist").Info("session persistence stopped after final flush")
				return
			case <-ticker.C:
				flushSession(ctx, sess, repo)
			}
		}
	}()
	return done
}

func flushSession(ctx context.Context, sess PersistableSession, repo Saver) {
	if !sess.IsDirty() {
		logger.WithComponent("persist").Tracef("session is clean, skipping flush")
		return
	}
	if err := ctx.Err(); err != nil {
		logger.WithComponent("persist").Debugf("flush cancelled: %v", err)
		return
	}

	snapshot := sess.Snapshot()
	snapshot.Metadata.LastUpdate = time.Now().UnixMilli()

	if err := repo.Save(ctx, &snapshot); err != nil {
		logger.WithComponent("persist").Errorf("persist error: failed to save session: %v", err)
		return
	}

	sess.ClearDirty()
	sess.SetLastUpdate(snapshot.Metadata.LastUpdate)
	logger.WithComponent("persist").Debug("session persisted to disk")
}
