package catalog

// Item is a purchasable product as published by the catalog source.
type Item struct {
	ID       int    `json:"id"`
	Coins    int    `json:"coins"`
	Price    int    `json:"price_credits"`
	ImageURL string `json:"image_url"`
	Name     string `json:"name"`
}
