package handler

import (
	"context"
	"net/http"
	"time"

	"novapos/internal/infra"
	"novapos/internal/repository"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
)

// Health reports the local store and the state of the remote link. A
// missing or tripped remote is not a failure: the POS keeps selling.
func Health(store repository.KVRepository, remoto service.RemoteGateway, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if store.Ping(ctx) != nil {
			storeStatus = "error"
		}

		remoteStatus := "offline"
		if remoto != nil && remoto.Configurado() {
			remoteStatus = "configured"
		}

		breaker := "n/a"
		if cb != nil {
			breaker = cb.State().String()
		}

		status := http.StatusOK
		if storeStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"store":   storeStatus,
			"remote":  remoteStatus,
			"breaker": breaker,
		})
	}
}
