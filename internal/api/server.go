package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"github.com/ember-dating/match-service/internal/auth"
	"github.com/ember-dating/match-service/internal/config"
	"github.com/ember-dating/match-service/internal/service"
	"github.com/ember-dating/match-service/internal/ws"
)

func NewServer(cfg *config.Config, matchSvc *service.MatchService, chatSvc *service.ChatService, profileSvc *service.ProfileService, wsrv *ws.Server, jv *auth.JWTValidator, presence PresenceReader) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.App.Env == "production",
	})
	app.Use(logger.New())
	h := NewHandlers(matchSvc, chatSvc, profileSvc, presence)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// live channel: auth happens inside the handshake, via ?token=
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsrv.HandleWS))

	api := app.Group("/v1")

	api.Use(func(c *fiber.Ctx) error {
		hdr := c.Get("Authorization")
		if hdr == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing auth"})
		}
		const pref = "Bearer "
		if len(hdr) <= len(pref) || hdr[:len(pref)] != pref {
			return c.Status(401).JSON(fiber.Map{"error": "invalid auth"})
		}
		token := hdr[len(pref):]
		sub, err := jv.Validate(token)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		c.Locals("user_id", sub)
		return c.Next()
	})

	api.Post("/actions/like/:user_id", h.like)
	api.Post("/actions/dislike/:user_id", h.dislike)
	api.Get("/matches", h.listMatches)
	api.Get("/matches/:match_id/messages", h.listMessages)
	api.Post("/matches/:match_id/messages", h.sendMessage)
	api.Delete("/matches/:match_id", h.unmatch)
	api.Post("/profiles", h.createProfile)
	api.Get("/profiles/discover", h.discover)
	api.Get("/profiles/:user_id", h.getProfile)
	api.Get("/presence/:user_id", h.getPresence)

	return app
}
