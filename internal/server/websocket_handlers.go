package server

import (
	"errors"
	"log/slog"

	"boostly/internal/featureflags"
	"boostly/internal/middleware"
	"boostly/internal/models"
	"boostly/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LikeStreamHandler handles GET /ws/likes. The auth gate has already resolved
// the company, so the upgraded connection only needs the id from locals.
// Companies outside the like_stream rollout get a 404.
func (s *Server) LikeStreamHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		companyID, ok := conn.Locals("companyID").(uint)
		if !ok || companyID == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(companyID, conn)
		if err != nil {
			middleware.Logger.Warn("like stream connection rejected",
				slog.Uint64("company_id", uint64(companyID)),
				slog.String("error", err.Error()))
			code := websocket.ClosePolicyViolation
			if errors.Is(err, notifications.ErrHubClosed) {
				code = websocket.CloseGoingAway
			}
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		companyID, err := requireCompanyID(c)
		if err != nil {
			return nil
		}
		if !s.flags.Enabled(featureflags.LikeStream, companyID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Like stream for company", companyID))
		}
		if s.hub == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewInternalError(errors.New("like stream unavailable")))
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
