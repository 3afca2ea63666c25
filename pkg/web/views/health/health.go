package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/middleware/db"
	"github.com/scienceol/chemtrack/pkg/middleware/redis"
)

func Health(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Live only says the process is up.
func Live(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Checks reports each downstream dependency as ok, unhealthy or
// not_initialized. The memory store has no database to check.
func Checks(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{}
	healthy := true

	if config.Global().Store.Driver == config.StoreMemory {
		checks["store"] = "memory"
	} else if ds := db.DB(); ds != nil {
		sqlDB, err := ds.DBIns().DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			checks["postgres"] = "unhealthy"
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not_initialized"
		healthy = false
	}

	if rc := redis.GetClient(); rc != nil {
		if err := rc.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else if config.Global().Store.Driver != config.StoreMemory {
		checks["redis"] = "not_initialized"
		healthy = false
	}
	return checks, healthy
}

func Ready(g *gin.Context) {
	checks, healthy := Checks(g.Request.Context())
	status, msg := http.StatusOK, "ready"
	if !healthy {
		status, msg = http.StatusServiceUnavailable, "not_ready"
	}
	g.JSON(status, gin.H{"status": msg, "checks": checks})
}
