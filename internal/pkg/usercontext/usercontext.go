// Package usercontext carries the authenticated photographer through a
// request. Controllers read from here instead of re-resolving credentials.
package usercontext

import "github.com/gofiber/fiber/v2"

// Locals keys shared between middleware and controllers.
const (
	KeyContext        = "PHOTOGRAPHER_CONTEXT"
	KeyPhotographerID = "photographer_id"
	KeyAuthenticated  = "authenticated"
)

// UserContext represents the authenticated photographer for a request.
type UserContext struct {
	PhotographerID  uint   `json:"photographer_id"`
	AuthID          string `json:"auth_id"`
	Email           string `json:"email"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// GetUserContext retrieves the photographer context from the fiber context.
// Returns an anonymous context if none is set.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyContext); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsAuthenticated: false}
}

// IsAuthenticated checks if the current request carries a valid photographer.
func IsAuthenticated(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAuthenticated
}

// GetPhotographerID returns the current photographer's ID, or 0 when the
// request is anonymous.
func GetPhotographerID(c *fiber.Ctx) uint {
	return GetUserContext(c).PhotographerID
}
