package handler

import (
	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/internal/pkg/serverutils"
	internalWS "stock-ticker-be/internal/websocket"
	"stock-ticker-be/pkg/ticker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedHandler streams finished resolutions over a websocket.
type FeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, log logger.ILogger) *FeedHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &FeedHandler{hub: hub, logger: log}
}

// ServeWs upgrades GET /api/ws/resolutions[?market=HK].
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	market := ""
	if raw := c.Query("market"); raw != "" {
		m, err := ticker.ParseMarket(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		}
		market = m.String()
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("FeedHandler", "Starting WebSocket session", map[string]interface{}{"market": market})
			internalWS.ServeWs(h.hub, conn, market)
			h.logger.Info("FeedHandler", "WebSocket session ended", map[string]interface{}{"market": market})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/resolutions", h.ServeWs)
}
