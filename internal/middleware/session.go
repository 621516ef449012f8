package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"agroMarket/domain"
	"agroMarket/pkg/logger"
	"agroMarket/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "agro_session"

	tokenContextKey   = "session_token"
	sessionContextKey = "session"
)

// SessionStore loads the server side session named by the cookie token
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
}

// JWTSession parses the session cookie. Requests without a valid token continue anonymously.
func JWTSession(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: jwt.SigningMethodHS256.Name,
		TokenLookup:   "cookie:" + SessionCookie,
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(utils.SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if _, cerr := c.Cookie(SessionCookie); cerr == nil {
				logger.Debug("ignoring invalid session cookie", "error", err.Error())
			}
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// LoadSession resolves the parsed token to its stored session and puts it on the context.
// A token whose session expired or was logged out is treated as anonymous.
func LoadSession(store SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok || token == nil || !token.Valid {
				return next(c)
			}

			claims, ok := token.Claims.(*utils.SessionClaims)
			if !ok || claims.SessionID == "" {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			session, err := store.Get(ctx, claims.SessionID)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					logger.Error("Failed to load session", err)
				}
				return next(c)
			}

			// user id inside the token must match the stored session
			if strconv.FormatUint(uint64(session.UserID), 10) != claims.UserID {
				logger.Warn("session user mismatch", "session_id", claims.SessionID)
				return next(c)
			}

			SetSession(c, session)

			return next(c)
		}
	}
}

func SetSession(c echo.Context, session *domain.Session) {
	c.Set(sessionContextKey, session)
	c.Set("user_id", session.UserID)
	c.Set("role", session.Role.String())
}

// CurrentSession returns the logged in session, or nil for anonymous requests.
func CurrentSession(c echo.Context) *domain.Session {
	session, _ := c.Get(sessionContextKey).(*domain.Session)
	return session
}

// RequireRole lets the request through only when the session holds role.
// Anonymous and wrong-role requests get the same redirect to the login page.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).Is(role) {
				return c.Redirect(http.StatusFound, "/login")
			}

			return next(c)
		}
	}
}

// SetSessionCookie stores the signed session token in an HttpOnly cookie.
func SetSessionCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
