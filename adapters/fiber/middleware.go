package fiber

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"

	"github.com/lborres/pinto"
)

const (
	localUser          = "user"
	localClearedCookie = "clearSessionCookie"
)

// requireAuth resolves the session cookie or bearer token and stores the user
// in c.Locals for downstream handlers.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	user, err := a.p.Auth.ResolveSession(c.Context(), a.credentials(c))
	if err != nil {
		if errors.Is(err, pinto.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(pinto.MessageResponse{Message: "Unauthorized"})
		}
		return a.handleAuthError(c, err)
	}

	c.Locals(localUser, user)
	return c.Next()
}

func currentUser(c fiber.Ctx) (*pinto.User, bool) {
	user, ok := c.Locals(localUser).(*pinto.User)
	return user, ok && user != nil
}

func (a *Adapter) credentials(c fiber.Ctx) pinto.Credentials {
	return pinto.Credentials{
		SessionToken: c.Cookies(a.p.Session.CookieName),
		BearerToken:  bearerToken(c),
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// expireSessionCookie wraps the cookie encryption layer. encryptcookie
// rewrites every response cookie after the handler returns and drops its
// expiry on the way, so the deletion cookie is written here, last.
func (a *Adapter) expireSessionCookie(c fiber.Ctx) error {
	err := c.Next()
	if cleared, _ := c.Locals(localClearedCookie).(bool); !cleared {
		return err
	}

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(a.p.Session.CookieName)
	cookie.SetValue("")
	cookie.SetPath("/")
	cookie.SetExpire(fasthttp.CookieExpireDelete)
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(a.p.SecureCookies)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.Response().Header.SetCookie(cookie)

	return err
}
