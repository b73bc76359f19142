package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/localnerve/portfolio-site/internal/utils"
)

const (
	localSessionID = "sid"
	localSession   = "session"
)

// AdminChecker answers whether a user is the stored admin.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Session makes sure the browser has a signed session cookie and stores the
// session id in the request locals. A missing or invalid cookie is replaced.
func Session(tokens *auth.Tokens, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid, err := tokens.Parse(c.Cookies(auth.CookieName)); err == nil {
			c.Locals(localSessionID, sid)
			return c.Next()
		}

		sid := auth.NewSessionID()
		value, err := tokens.Issue(sid)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusInternalServerError,
				Message: "failed to issue session cookie",
				Type:    "admin.session",
			}
		}
		c.Cookie(&fiber.Cookie{
			Name:     auth.CookieName,
			Value:    value,
			Path:     "/",
			Expires:  time.Now().Add(tokens.TTL()),
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Locals(localSessionID, sid)
		return c.Next()
	}
}

// SessionID returns the browser session id set by Session, or "".
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localSessionID).(string)
	return sid
}

// CurrentSession returns the signed-in session set by RequireSession, or nil.
func CurrentSession(c *fiber.Ctx) *auth.Session {
	sess, _ := c.Locals(localSession).(*auth.Session)
	return sess
}

// RequireSession rejects requests without a signed-in session.
func RequireSession(store *auth.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := SessionID(c)
		if sid == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "session cookie \"" + auth.CookieName + "\" not found",
				Type:    "admin.authentication",
			}
		}
		sess, err := store.Current(c.UserContext(), sid)
		if err != nil || sess == nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "sign in required",
				Type:    "admin.authentication",
			}
		}
		c.Locals(localSession, sess)
		return c.Next()
	}
}

// RequireAdmin rejects signed-in users who are not the stored admin. It must
// run after RequireSession.
func RequireAdmin(admins AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "sign in required",
				Type:    "admin.authentication",
			}
		}
		ok, err := admins.IsAdmin(c.UserContext(), sess.UserID)
		if err != nil {
			return &types.CustomError{
				Code:    types.StatusFor(types.KindOf(err)),
				Message: utils.SanitizeErr(err),
				Type:    "admin.authorization",
			}
		}
		if !ok {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "not authorized",
				Type:    "admin.authorization",
			}
		}
		return c.Next()
	}
}
