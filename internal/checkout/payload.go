package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jcmexdev/coin-storefront/internal/cart"
)

// Webhook message layout. Field labels are read by the fulfillment team.
const (
	messageContent = "🎮 **New MTcoins Purchase Order**"
	embedTitle     = "طلب شراء كوينز جديد - MTcoins"
	embedColor     = 0xff0000

	fieldTotalCoins = "الكمية الإجمالية"
	fieldTotalPrice = "قيمة الدفع بالكردت"
	fieldIdentity   = "يوزر اللاعب (Discord)"
	fieldTimestamp  = "وقت وتاريخ الطلب"
	fieldDetails    = "تفاصيل الطلب"

	// en-US, 12-hour clock: 10/17/2026, 03:04:05 PM
	timestampLayout = "01/02/2006, 03:04:05 PM"
)

// Payload is the JSON body accepted by Discord-compatible webhooks.
type Payload struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

type Embed struct {
	Title  string  `json:"title"`
	Color  int     `json:"color"`
	Fields []Field `json:"fields"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// BuildPayload formats an order. The five fields always appear in the same
// order: total coins, total price, identity, timestamp, line listing.
func BuildPayload(identity string, c *cart.Cart, at time.Time) Payload {
	return Payload{
		Content: messageContent,
		Embeds: []Embed{{
			Title: embedTitle,
			Color: embedColor,
			Fields: []Field{
				{Name: fieldTotalCoins, Value: fmt.Sprintf("%s Coins", humanize.Comma(int64(c.TotalCoins()))), Inline: true},
				{Name: fieldTotalPrice, Value: fmt.Sprintf("%s Credits", humanize.Comma(int64(c.TotalPrice()))), Inline: true},
				{Name: fieldIdentity, Value: identity},
				{Name: fieldTimestamp, Value: at.Format(timestampLayout)},
				{Name: fieldDetails, Value: lineListing(c.Lines())},
			},
		}},
	}
}

func lineListing(lines []cart.Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%s x%d", l.Item.Name, l.Quantity)
	}
	return strings.Join(parts, "\n")
}
