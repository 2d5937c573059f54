package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

type NotificationHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

// Upgrade authenticates the socket with ?token= (or the session cookie) before
// the websocket handshake.
func (h *NotificationHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tok := c.Query("token")
	if tok == "" {
		tok = c.Cookies(utils.CookieName)
	}
	claims, err := utils.ParseJWT(h.JWTSecret, tok)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired session")
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired session")
	}

	c.Locals("wsUserId", uid)
	return c.Next()
}

func (h *NotificationHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("wsUserId").(uuid.UUID)
		if !ok {
			_ = conn.Close()
			return
		}
		h.Hub.Serve(realtime.NewClient(uid, realtime.NewWebSocketConn(conn)))
	})
}
