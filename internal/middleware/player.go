package middleware

import (
	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	playerIDHeader = "X-Player-ID"
	playerIDQuery  = "playerId"
	playerIDLocal  = "playerID"

	maxPlayerIDLen = 64
)

// EnsurePlayerID resolves the caller's player id, header first then query, and
// stores an owned copy in the request locals. Games keep the id as a seat owner
// long after fasthttp has recycled the request buffer it was read from.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PlayerID(c) != "" {
			return c.Next()
		}

		playerID := c.Get(playerIDHeader)
		if playerID == "" {
			playerID = c.Query(playerIDQuery)
		}

		switch {
		case playerID == "":
			log.WithField("path", c.Path()).Debug("request without player id")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		case len(playerID) > maxPlayerIDLen:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "player ID is too long",
			})
		}

		c.Locals(playerIDLocal, utils.CopyString(playerID))
		return c.Next()
	}
}

// PlayerID returns the id stored by EnsurePlayerID, or "" when there is none.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(playerIDLocal).(string)
	return id
}
