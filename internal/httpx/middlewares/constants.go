package middlewares

// contextKey is unexported so keys never collide with other packages.
type contextKey string

const (
	HeaderXRequestID = "X-Request-Id"

	CookieSession = "sf_session"
	CookieFlash   = "sf_flash"

	// ContextKeySession holds the visitor's *storefront.Session.
	ContextKeySession contextKey = "session"
)
