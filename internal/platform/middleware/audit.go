package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

// AuditEntry captures who accessed which clinical record, when, and how.
type AuditEntry struct {
	UserID     string
	UserRole   string
	Resource   string
	Action     string // read, create, update, search
	Path       string
	Method     string
	IPAddress  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries. Tests can provide a mock; when no
// recorder is supplied the middleware falls back to structured logging.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs access to patient-bearing routes under /api/v1. Screening data
// is clinical information; every authenticated read or write is recorded.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/v1/") || strings.HasPrefix(path, "/api/v1/auth/") {
				return next(c)
			}

			err := next(c)

			sess, _ := auth.SessionFromContext(req.Context())
			rid, _ := c.Get("request_id").(string)
			entry := AuditEntry{
				UserID:     sess.UserID.String(),
				UserRole:   sess.Role,
				Resource:   resourceFromPath(path),
				Action:     actionFromMethod(req.Method),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				RequestID:  rid,
				StatusCode: c.Response().Status,
				Timestamp:  time.Now(),
			}

			if len(recorders) > 0 {
				for _, r := range recorders {
					if recErr := r.RecordAccess(entry); recErr != nil {
						logger.Error().Err(recErr).Msg("audit recorder failed")
					}
				}
			} else {
				logger.Info().
					Str("user_id", entry.UserID).
					Str("role", entry.UserRole).
					Str("resource", entry.Resource).
					Str("action", entry.Action).
					Str("path", entry.Path).
					Int("status", entry.StatusCode).
					Msg("audit")
			}

			return err
		}
	}
}

func resourceFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/api/v1/")
	if i := strings.IndexByte(rest, '/'); i > 0 {
		return rest[:i]
	}
	return rest
}

func actionFromMethod(method string) string {
	switch method {
	case http.MethodGet:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
