package logging

import (
	"log/slog"
	"time"

	"github.com/okaz-app/okaz-backend/internal/models"
	"gorm.io/gorm"
)

const (
	logRetention  = 30 * 24 * time.Hour
	sweepInterval = 24 * time.Hour
)

// StartCleanup launches a goroutine that prunes system_logs rows older than
// the retention window. One sweep runs immediately, then once per day until
// done is closed.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		sweep(db)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep(db)
			case <-done:
				return
			}
		}
	}()
}

func sweep(db *gorm.DB) {
	cutoff := time.Now().Add(-logRetention)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup pruned old entries", "deleted", result.RowsAffected)
	}
}
