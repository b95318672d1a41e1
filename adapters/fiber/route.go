package fiber

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"

	"github.com/lborres/pinto"
	"github.com/lborres/pinto/pkg/validate"
)

type Adapter struct {
	app       *fiber.App
	validator *validate.Validator
	p         *pinto.Pinto
}

var (
	_ pinto.HTTPAdapter     = (*Adapter)(nil)
	_ fiber.StructValidator = (*validate.Validator)(nil)
)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app, validator: validate.New()}
}

// RegisterRoutes mounts every endpoint from the registry under the base
// path. Protected endpoints run behind requireAuth.
func (a *Adapter) RegisterRoutes(p *pinto.Pinto) error {
	a.p = p

	handlers := map[string]fiber.Handler{
		"register":           a.register,
		"login":              a.login,
		"verifyEmail":        a.verifyEmail,
		"resendVerification": a.resendVerification,
		"forgotPassword":     a.forgotPassword,
		"resetPassword":      a.resetPassword,
		"logout":             a.logout,
		"me":                 a.me,
		"updateProfile":      a.updateProfile,
		"validateToken":      a.validateToken,
	}

	api := a.app.Group(p.BasePath)
	api.Use(a.expireSessionCookie)
	if p.SessionSecret != "" {
		api.Use(encryptcookie.New(encryptcookie.Config{
			Key: CookieKey(p.SessionSecret),
		}))
	}

	for _, ep := range p.Endpoints.Endpoints() {
		h, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no handler for %s %s (%s)", ep.Method, ep.Path, ep.Metadata.OperationID)
		}

		if ep.Protected {
			api.Add([]string{ep.Method}, ep.Path, a.requireAuth, h)
			continue
		}
		api.Add([]string{ep.Method}, ep.Path, h)
	}

	return nil
}

// CookieKey derives the AES-256 cookie encryption key from the session secret.
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}
