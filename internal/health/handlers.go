package health

import (
	"context"
	"time"

	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// JSON GET /health/json — DB and Redis connectivity.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbStatus := "not configured"
	if h.DB != nil {
		dbStatus = "ok"
		sqlDB, err := h.DB.DB()
		if err != nil {
			dbStatus = err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = err.Error()
		}
	}

	redisStatus := "not configured"
	if h.Rdb != nil {
		redisStatus = "ok"
		if err := h.Rdb.Ping(ctx).Err(); err != nil {
			redisStatus = err.Error()
		}
	}

	return response.Success(c, "Health checked", fiber.Map{
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now().UTC(),
	}, nil)
}
