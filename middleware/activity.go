package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salesboost/salesboost/models"
)

// ActivityRecorder counts successful API requests per day and route template,
// feeding the stats endpoint. Counting uses an atomic upsert so concurrent
// requests never collide on the (date, path) unique index.
func ActivityRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		// Route template (e.g. /api/v1/campaigns/:id/standing) keeps the
		// cardinality of recorded paths bounded.
		path := c.FullPath()
		if path == "" || path == "/health" {
			return
		}

		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.Activity{Date: localMidnight, Path: path, Count: 1}).Error
	}
}
