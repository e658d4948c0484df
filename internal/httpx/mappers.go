package httpx

import (
	"github.com/jcmexdev/coin-storefront/internal/catalog"
	"github.com/jcmexdev/coin-storefront/internal/storefront"
)

func mapItem(it catalog.Item) ItemResponse {
	return ItemResponse{
		ID:       it.ID,
		Coins:    it.Coins,
		Price:    it.Price,
		ImageURL: it.ImageURL,
		Name:     it.Name,
	}
}

func mapCatalog(st catalog.State) CatalogResponse {
	out := CatalogResponse{
		State: string(st.Phase),
		Items: make([]ItemResponse, len(st.Items)),
	}
	for i, it := range st.Items {
		out.Items[i] = mapItem(it)
	}
	if st.Err != nil {
		out.Error = st.Err.Error()
	}
	return out
}

func mapCart(v storefront.View, notice *storefront.Notice) CartResponse {
	lines := make([]LineResponse, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = LineResponse{Item: mapItem(l.Item), Quantity: l.Quantity}
	}
	return CartResponse{
		Lines:      lines,
		Identity:   v.Identity,
		TotalCoins: v.TotalCoins,
		TotalPrice: v.TotalPrice,
		Notice:     notice,
	}
}
