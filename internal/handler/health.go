package handler

import (
	"context"
	"net/http"
	"time"

	"klikpos/internal/infra"
	"klikpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity. The WhatsApp breaker state and
// dead-letter depths are informative and never fail the check.
func Health(db *gorm.DB, rdb *redis.Client, whatsappCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if db == nil {
			dbStatus = "error"
		} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb == nil || rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if whatsappCB != nil {
			body["whatsapp"] = whatsappCB.Stats()
		}
		if redisStatus == "connected" {
			body["dlq"] = worker.DLQStats(ctx, rdb)
		}
		c.JSON(status, body)
	}
}
