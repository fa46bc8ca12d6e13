package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akarimov/chatbroker/internal/config"
	"github.com/akarimov/chatbroker/internal/core"
	"github.com/akarimov/chatbroker/internal/store"
)

// NewServer builds the HTTP server: the websocket endpoint plus the
// read-only REST surface.
func NewServer(router *core.Router, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(st, cfg.HistoryLimit, logger)
	engine.GET("/api/health", api.Health)
	engine.GET("/api/rooms", api.ListRooms)
	engine.GET("/api/rooms/:roomId/messages", api.RoomMessages)

	engine.GET("/ws", gin.WrapH(NewWSHandler(router, cfg.MaxMessageBytes, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
