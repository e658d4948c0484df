package storefront

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a short message for the customer about the outcome of an action.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }

func failure(msg string) Notice { return Notice{Level: LevelError, Message: msg} }

const (
	msgRemoved        = "Removed from cart"
	msgTooLarge       = "Quantity is too large"
	msgUnknownItem    = "Product not found"
	msgCatalogFailure = "Failed to load products"
)

// CatalogFailureNotice is shown while the catalog is in the failed state.
var CatalogFailureNotice = failure(msgCatalogFailure)
