package utils

import (
	"os"
	"time"

	"github.com/salesboost/salesboost/config"
	"github.com/salesboost/salesboost/models"
)

// StartEvidenceCleaner launches a background goroutine that periodically
// removes evidence rows whose owning completion or bonus declaration is gone,
// deleting the stored file alongside. Best-effort; failures are logged and
// retried on the next tick.
func StartEvidenceCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}

			var orphans []models.EvidenceFile
			err := db.
				Where("(completion_id IS NOT NULL AND completion_id NOT IN (SELECT id FROM action_completions)) OR "+
					"(bonus_id IS NOT NULL AND bonus_id NOT IN (SELECT id FROM bonus_declarations)) OR "+
					"(completion_id IS NULL AND bonus_id IS NULL)").
				Limit(100).
				Find(&orphans).Error
			if err != nil {
				if Sugar != nil {
					Sugar.Warnf("evidence cleaner query failed: %v", err)
				}
				continue
			}

			for _, it := range orphans {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Remove row regardless of file deletion outcome
				if err := db.Delete(&models.EvidenceFile{}, it.ID).Error; err != nil && Sugar != nil {
					Sugar.Warnf("evidence cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}
