package workflow

import (
	"context"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// withReportLock serializes officer mutations per report across instances.
// Best-effort: if redis is unavailable or the lock cannot be obtained, the
// mutation proceeds anyway since the store update is last-writer-wins.
func withReportLock(ctx context.Context, reportId string, fn func() error) error {
	logger := config.GetLogger()
	locker := config.GetRedisLock()

	if locker == nil {
		logger.WithFields(logrus.Fields{
			"field":     "withReportLock",
			"report_id": reportId,
		}).Warn("redis lock not ready; proceeding without redis lock")
		return fn()
	}

	lock, err := locker.Obtain(ctx, "lock:report:"+reportId, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		logger.WithFields(logrus.Fields{
			"field":     "withReportLock",
			"report_id": reportId,
		}).Warn("could not obtain report lock; proceeding without redis lock")
		return fn()
	} else if err != nil {
		config.LogError(logger, "workflow", "withReportLock", "Error obtaining report lock", reportId, err)
		return fn()
	}
	defer func() {
		_ = lock.Release(ctx)
	}()

	return fn()
}
