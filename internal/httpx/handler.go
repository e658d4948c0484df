package httpx

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/coin-storefront/internal/cart"
	"github.com/jcmexdev/coin-storefront/internal/catalog"
	"github.com/jcmexdev/coin-storefront/internal/checkout"
	"github.com/jcmexdev/coin-storefront/internal/httpx/middlewares"
	"github.com/jcmexdev/coin-storefront/internal/orderlog"
	"github.com/jcmexdev/coin-storefront/internal/storefront"
)

// Handler serves the storefront page and its JSON API.
type Handler struct {
	shop   *storefront.Shop
	orders orderlog.Repository // nil-safe: /api/orders answers 404 if nil
	page   *template.Template
}

// NewHandler wires the handler. orders may be nil when the order log is off.
func NewHandler(shop *storefront.Shop, orders orderlog.Repository, page *template.Template) *Handler {
	return &Handler{shop: shop, orders: orders, page: page}
}

// GetCatalog reports the catalog load state and, once loaded, the items.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapCatalog(h.shop.Catalog.State()))
}

// ReloadCatalog restarts the catalog load and waits for the outcome.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	st := h.shop.Catalog.Reload(r.Context())
	status := http.StatusOK
	if st.Phase == catalog.PhaseFailed {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, mapCatalog(st))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, mapCart(sess.Snapshot(), nil))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	sess := middlewares.SessionFrom(r.Context())
	notice, err := h.shop.AddItem(sess, req.ID, req.Quantity)
	if err != nil {
		writeNoticeError(w, err, notice)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(sess.Snapshot(), &notice))
}

func (h *Handler) AddCustom(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if !decode(w, r, &req) {
		return
	}

	sess := middlewares.SessionFrom(r.Context())
	notice, err := h.shop.AddCustom(sess, req.Quantity)
	if err != nil {
		writeNoticeError(w, err, notice)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(sess.Snapshot(), &notice))
}

// UpdateQuantity overwrites a line's quantity; zero or less removes it.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	var req QuantityRequest
	if !decode(w, r, &req) {
		return
	}

	sess := middlewares.SessionFrom(r.Context())
	n, shown, err := sess.SetQuantity(itemID, req.Quantity)
	if err != nil {
		writeNoticeError(w, err, n)
		return
	}
	var notice *storefront.Notice
	if shown {
		notice = &n
	}
	writeJSON(w, http.StatusOK, mapCart(sess.Snapshot(), notice))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	sess := middlewares.SessionFrom(r.Context())
	notice := sess.Remove(itemID)
	writeJSON(w, http.StatusOK, mapCart(sess.Snapshot(), &notice))
}

func (h *Handler) SetIdentity(w http.ResponseWriter, r *http.Request) {
	var req IdentityRequest
	if !decode(w, r, &req) {
		return
	}
	sess := middlewares.SessionFrom(r.Context())
	sess.SetIdentity(req.Identity)
	writeJSON(w, http.StatusOK, mapCart(sess.Snapshot(), nil))
}

// Checkout submits the session's cart to the fulfillment webhook.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	// the body is optional; an empty one means "use the session identity"
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	sess := middlewares.SessionFrom(r.Context())
	if req.Identity != nil {
		sess.SetIdentity(*req.Identity)
	}

	slog.InfoContext(r.Context(), "checkout requested", "session_id", sess.ID)

	notice, receipt, err := h.shop.Checkout(r.Context(), sess)
	if err != nil {
		writeNoticeError(w, err, notice)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		OrderID:    receipt.OrderID,
		TotalCoins: receipt.TotalCoins,
		TotalPrice: receipt.TotalPrice,
		Notice:     notice,
	})
}

// GetOrder returns the latest order log entry for an order ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if h.orders == nil {
		writeError(w, http.StatusNotFound, "order_log_disabled", "")
		return
	}

	entry, err := h.orders.Latest(r.Context(), orderID)
	if errors.Is(err, orderlog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "order_log_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{
		OrderID:    entry.OrderID,
		Status:     string(entry.Status),
		Identity:   entry.Identity,
		TotalCoins: entry.TotalCoins,
		TotalPrice: entry.TotalPrice,
		Error:      entry.Error,
		TraceID:    entry.TraceID,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
	})
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_item_id", err.Error())
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// errorStatus maps domain errors to a status code and error code.
func errorStatus(err error) (int, string) {
	var vErr *checkout.ValidationError
	var subErr *checkout.SubmitError
	switch {
	case errors.As(err, &vErr), errors.Is(err, cart.ErrBelowMinimum), errors.Is(err, cart.ErrQuantityTooLarge):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, storefront.ErrUnknownItem):
		return http.StatusNotFound, "item_not_found"
	case errors.As(err, &subErr):
		return http.StatusBadGateway, "submission_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeNoticeError(w http.ResponseWriter, err error, notice storefront.Notice) {
	status, code := errorStatus(err)
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: notice.Message,
		Notice:  &notice,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
