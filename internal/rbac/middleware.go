package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// PermissionChecker is what the middleware needs from the rbac service.
type PermissionChecker interface {
	HasAny(ctx context.Context, userID int64, perms ...string) (bool, error)
	HasAll(ctx context.Context, userID int64, perms ...string) (bool, error)
}

// Middleware guards routes behind permission checks.
type Middleware struct {
	logger  *slog.Logger
	checker PermissionChecker
}

// NewMiddleware constructs the rbac middleware.
func NewMiddleware(logger *slog.Logger, checker PermissionChecker) Middleware {
	return Middleware{logger: logger, checker: checker}
}

// RequireAny allows the request when the user holds at least one permission.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, func(ctx context.Context, userID int64) (bool, error) {
		return m.checker.HasAny(ctx, userID, perms...)
	})
}

// RequireAll allows the request only when the user holds every permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, func(ctx context.Context, userID int64) (bool, error) {
		return m.checker.HasAll(ctx, userID, perms...)
	})
}

func (m Middleware) require(perms []string, check func(context.Context, int64) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			userID, err := strconv.ParseInt(sess.User(), 10, 64)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			ok, err := check(r.Context(), userID)
			if err != nil {
				m.logger.Error("permission check", slog.Int64("user_id", userID), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !ok {
				m.logger.Warn("access denied",
					slog.Int64("user_id", userID),
					slog.String("path", r.URL.Path),
					slog.Any("required", perms))
				http.Error(w, "Akses ditolak", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
