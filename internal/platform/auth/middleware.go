package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Skipper decides whether a request bypasses session authentication.
type Skipper func(c echo.Context) bool

// PathSkipper skips authentication for exact path matches (login, signup).
func PathSkipper(paths ...string) Skipper {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(c echo.Context) bool {
		return set[c.Path()]
	}
}

// SessionMiddleware authenticates requests with a Bearer session token and
// attaches the resulting Session to the request context. Requests without a
// valid session get 401.
func SessionMiddleware(mgr *Manager, skip Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			sess, err := mgr.ParseToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			ctx := WithSession(c.Request().Context(), sess)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
