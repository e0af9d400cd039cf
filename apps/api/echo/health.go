package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/entregas/core"
)

const (
	dbConnected    = "connected"
	dbDisconnected = "disconnected"

	healthPingTimeout = 2 * time.Second
)

type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// healthCheck always answers 200: the API process is alive even when the database is not.
func healthCheck(pinger core.Pinger) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		dbStatus := dbDisconnected
		if pinger != nil {
			pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthPingTimeout)
			defer cancel()
			if err := pinger.Ping(pingCtx); err == nil {
				dbStatus = dbConnected
			}
		}

		return ctx.JSON(http.StatusOK, healthResponse{
			Status:    "ok",
			Database:  dbStatus,
			Timestamp: time.Now().UTC(),
		})
	}
}
