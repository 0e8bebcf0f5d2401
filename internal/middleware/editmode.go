package middleware

import (
	"context"
	"net/http"

	"go-newsblog-app/internal/session"
)

type settingsKey string

const (
	// EditModeKey is the key for the edit-mode flag in the request context.
	EditModeKey settingsKey = "editMode"
)

// EditMode checks whether the signed-in user has toggled edit mode in their
// session and sets a corresponding flag in the request context. In edit mode
// listings and detail views include unpublished and future-dated articles.
// The flag is never honored for anonymous visitors.
func EditMode(sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			editMode := sm.GetBool(r.Context(), "edit_mode") && GetUserInfo(r.Context()).Authenticated()
			ctx := context.WithValue(r.Context(), EditModeKey, editMode)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsEditMode returns true if the edit-mode flag is set in the request context.
func IsEditMode(ctx context.Context) bool {
	edit, ok := ctx.Value(EditModeKey).(bool)
	return ok && edit
}
