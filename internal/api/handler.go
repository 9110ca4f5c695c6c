package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ember-dating/match-service/internal/domain"
	"github.com/ember-dating/match-service/internal/service"
)

// PresenceReader reports another user's online status.
type PresenceReader interface {
	GetPresence(ctx context.Context, userID string) (map[string]any, error)
}

type Handlers struct {
	matchSvc   *service.MatchService
	chatSvc    *service.ChatService
	profileSvc *service.ProfileService
	presence   PresenceReader
}

func NewHandlers(matchSvc *service.MatchService, chatSvc *service.ChatService, profileSvc *service.ProfileService, presence PresenceReader) *Handlers {
	return &Handlers{matchSvc: matchSvc, chatSvc: chatSvc, profileSvc: profileSvc, presence: presence}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 404
	case errors.Is(err, domain.ErrForbidden):
		return 403
	case errors.Is(err, domain.ErrSelfAction), errors.Is(err, domain.ErrInvalidContent):
		return 400
	default:
		return 500
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func (h *Handlers) like(c *fiber.Ctx) error {
	actor := c.Locals("user_id").(string)
	target := c.Params("user_id")
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	res, err := h.matchSvc.Like(ctx, actor, target)
	if err != nil {
		return fail(c, err)
	}
	if !res.Matched {
		return c.JSON(fiber.Map{"is_match": false})
	}
	return c.JSON(fiber.Map{"is_match": true, "match": res.Match})
}

func (h *Handlers) dislike(c *fiber.Ctx) error {
	actor := c.Locals("user_id").(string)
	target := c.Params("user_id")
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := h.matchSvc.Dislike(ctx, actor, target); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handlers) listMatches(c *fiber.Ctx) error {
	user := c.Locals("user_id").(string)
	matches, err := h.chatSvc.ListMatches(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": matches})
}

func (h *Handlers) listMessages(c *fiber.Ctx) error {
	user := c.Locals("user_id").(string)
	matchID := c.Params("match_id")
	msgs, err := h.chatSvc.ListMessages(c.Context(), matchID, user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": msgs})
}

func (h *Handlers) sendMessage(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	user := c.Locals("user_id").(string)
	matchID := c.Params("match_id")
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.chatSvc.SendMessage(ctx, matchID, user, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"status": "ok", "data": msg})
}

func (h *Handlers) unmatch(c *fiber.Ctx) error {
	user := c.Locals("user_id").(string)
	matchID := c.Params("match_id")
	if err := h.chatSvc.Unmatch(c.Context(), matchID, user); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handlers) createProfile(c *fiber.Ctx) error {
	var u domain.User
	if err := c.BodyParser(&u); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	u.ID = c.Locals("user_id").(string)
	created, err := h.profileSvc.Create(c.Context(), &u)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"status": "ok", "data": created})
}

func (h *Handlers) getProfile(c *fiber.Ctx) error {
	p, err := h.profileSvc.Get(c.Context(), c.Params("user_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": p})
}

// getPresence reports whether a matched counterpart is online. A user with
// no presence record at all reads as offline, not as an error.
func (h *Handlers) getPresence(c *fiber.Ctx) error {
	caller := c.Locals("user_id").(string)
	target := c.Params("user_id")

	// presence is only visible between matched users
	matches, err := h.chatSvc.ListMatches(c.Context(), caller)
	if err != nil {
		return fail(c, err)
	}
	visible := false
	for _, m := range matches {
		if m.User.ID == target {
			visible = true
			break
		}
	}
	if !visible {
		return fail(c, domain.ErrForbidden)
	}

	pres, err := h.presence.GetPresence(c.Context(), target)
	if err != nil || pres == nil {
		pres = map[string]any{"status": "offline"}
	}
	return c.JSON(fiber.Map{"status": "ok", "data": pres})
}

func (h *Handlers) discover(c *fiber.Ctx) error {
	user := c.Locals("user_id").(string)
	profiles, err := h.profileSvc.Discover(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": profiles})
}
