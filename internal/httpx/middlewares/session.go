package middlewares

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/coin-storefront/internal/storefront"
)

// AttachSession resolves the visitor's session from the session cookie,
// creating one (and setting the cookie) when it is missing or expired.
func AttachSession(store *storefront.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(CookieSession); err == nil {
				id = c.Value
			}

			sess, created := store.GetOrCreate(id)
			if created {
				slog.DebugContext(r.Context(), "session created", "session_id", sess.ID)
				http.SetCookie(w, &http.Cookie{
					Name:     CookieSession,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by AttachSession, or nil.
func SessionFrom(ctx context.Context) *storefront.Session {
	sess, _ := ctx.Value(ContextKeySession).(*storefront.Session)
	return sess
}

// SetFlash stores notices for the next page render.
func SetFlash(w http.ResponseWriter, notices ...storefront.Notice) {
	if len(notices) == 0 {
		return
	}
	raw, err := json.Marshal(notices)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieFlash,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the flash notices.
func PopFlash(w http.ResponseWriter, r *http.Request) []storefront.Notice {
	c, err := r.Cookie(CookieFlash)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: CookieFlash, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var notices []storefront.Notice
	if err := json.Unmarshal(raw, &notices); err != nil {
		return nil
	}
	return notices
}
