package httpx

import (
	"github.com/jcmexdev/coin-storefront/internal/storefront"
)

type AddItemRequest struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type IdentityRequest struct {
	Identity string `json:"identity"`
}

// CheckoutRequest may carry the identity; when omitted the one stored on the
// session is used.
type CheckoutRequest struct {
	Identity *string `json:"identity,omitempty"`
}

type ItemResponse struct {
	ID       int    `json:"id"`
	Coins    int    `json:"coins"`
	Price    int    `json:"price_credits"`
	ImageURL string `json:"image_url"`
	Name     string `json:"name"`
}

type CatalogResponse struct {
	State string         `json:"state"`
	Items []ItemResponse `json:"items"`
	Error string         `json:"error,omitempty"`
}

type LineResponse struct {
	Item     ItemResponse `json:"item"`
	Quantity int          `json:"quantity"`
}

type CartResponse struct {
	Lines      []LineResponse     `json:"lines"`
	Identity   string             `json:"identity"`
	TotalCoins int                `json:"total_coins"`
	TotalPrice int                `json:"total_price"`
	Notice     *storefront.Notice `json:"notice,omitempty"`
}

type CheckoutResponse struct {
	OrderID    string            `json:"order_id"`
	TotalCoins int               `json:"total_coins"`
	TotalPrice int               `json:"total_price"`
	Notice     storefront.Notice `json:"notice"`
}

type OrderResponse struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	Identity   string `json:"identity"`
	TotalCoins int    `json:"total_coins"`
	TotalPrice int    `json:"total_price"`
	Error      string `json:"error,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type ErrorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message,omitempty"`
	Notice  *storefront.Notice `json:"notice,omitempty"`
}
