package httpx

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/jcmexdev/coin-storefront/internal/catalog"
	"github.com/jcmexdev/coin-storefront/internal/httpx/middlewares"
	"github.com/jcmexdev/coin-storefront/internal/storefront"
)

var pageFuncs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
}

// ParsePage parses index.html from the given template filesystem.
func ParsePage(templates fs.FS) (*template.Template, error) {
	return template.New("index.html").Funcs(pageFuncs).ParseFS(templates, "index.html")
}

type pageData struct {
	Phase       catalog.Phase
	Items       []catalog.Item
	Cart        storefront.View
	Notices     []storefront.Notice
	CustomMin   int
	CustomQuote int
	Multiplier  int
}

// Index renders the storefront page for the visitor's session.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	st := h.shop.Catalog.State()

	notices := middlewares.PopFlash(w, r)
	if st.Phase == catalog.PhaseFailed {
		notices = append(notices, storefront.CatalogFailureNotice)
	}

	data := pageData{
		Phase:       st.Phase,
		Items:       st.Items,
		Cart:        sess.Snapshot(),
		Notices:     notices,
		CustomMin:   h.shop.Builder.Minimum,
		CustomQuote: h.shop.Builder.Quote(h.shop.Builder.Minimum),
		Multiplier:  h.shop.Builder.Multiplier,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "render page", "error", err)
	}
}

func (h *Handler) FormAdd(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	// unparsable values become 0: an unknown item or the default quantity of 1
	id, _ := strconv.Atoi(r.FormValue("id"))
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))

	notice, _ := h.shop.AddItem(sess, id, quantity)
	backHome(w, r, notice)
}

func (h *Handler) FormCustom(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	// an unparsable quantity is treated as 0 and rejected by the minimum check
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))

	notice, _ := h.shop.AddCustom(sess, quantity)
	backHome(w, r, notice)
}

func (h *Handler) FormUpdate(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	id, err1 := strconv.Atoi(r.FormValue("id"))
	quantity, err2 := strconv.Atoi(r.FormValue("quantity"))
	if err1 != nil || err2 != nil {
		backHome(w, r)
		return
	}

	if notice, shown, _ := sess.SetQuantity(id, quantity); shown {
		backHome(w, r, notice)
		return
	}
	backHome(w, r)
}

func (h *Handler) FormRemove(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		backHome(w, r)
		return
	}
	backHome(w, r, sess.Remove(id))
}

func (h *Handler) FormCheckout(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	if err := r.ParseForm(); err == nil {
		if v, ok := r.PostForm["identity"]; ok {
			sess.SetIdentity(v[0])
		}
	}

	notice, receipt, err := h.shop.Checkout(r.Context(), sess)
	if err != nil {
		slog.InfoContext(r.Context(), "checkout not completed", "session_id", sess.ID, "error", err)
	} else {
		slog.InfoContext(r.Context(), "checkout completed", "session_id", sess.ID, "order_id", receipt.OrderID)
	}
	backHome(w, r, notice)
}

// backHome finishes a form post with a redirect to the page (post/redirect/get).
func backHome(w http.ResponseWriter, r *http.Request, notices ...storefront.Notice) {
	middlewares.SetFlash(w, notices...)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
