// Package admindelivery manages delivery layer of admin endpoints.
package admindelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/pkg/web"
)

// Dashboard system statuses.
const (
	StatusOperational = "operational"
	StatusDegraded    = "degraded"
)

// Pinger reports whether the backing stores are reachable.
//
//go:generate mockgen -source http.go -destination http_mock.go -package admindelivery
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler facilitates admin delivery layer logic.
type Handler struct {
	backend string
	pinger  Pinger
	now     func() time.Time
}

// NewHandler returns admin handler for the named store backend.
func NewHandler(backend string, p Pinger) *Handler {
	return &Handler{backend: backend, pinger: p, now: time.Now}
}

// Dashboard is the system overview shown to admins.
type Dashboard struct {
	SystemStatus string    `json:"system_status"`
	StoreBackend string    `json:"store_backend"`
	Timestamp    time.Time `json:"timestamp"`
}

type data struct {
	Dashboard Dashboard `json:"dashboard"`
}

// Dashboard handles admin http request for the system status.
func (h *Handler) Dashboard(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	status := StatusOperational
	if err := h.pinger.Ping(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("store ping failed")
		status = StatusDegraded
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{Dashboard{
		SystemStatus: status,
		StoreBackend: h.backend,
		Timestamp:    h.now().UTC(),
	}}})
}
