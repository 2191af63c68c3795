package models

import "github.com/shopspring/decimal"

// CartLine is one requested line of a cart or order.
type CartLine struct {
	ProductDetailID string `json:"product_detail_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
}

// QuoteLine is a priced cart line.
type QuoteLine struct {
	ProductDetailID string          `json:"product_detail_id"`
	ProductID       string          `json:"product_id"`
	CategoryID      string          `json:"category_id,omitempty"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// PriceQuote is the computed price of a set of cart lines. It is a value; applying a
// discount returns a new quote.
type PriceQuote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	LineItems      []QuoteLine     `json:"line_items"`
}

func (q PriceQuote) ApplyDiscount(discount decimal.Decimal) PriceQuote {
	out := q
	out.LineItems = append([]QuoteLine(nil), q.LineItems...)
	out.DiscountAmount = discount
	out.TotalAmount = q.Subtotal.Add(q.ShippingCost).Add(q.TaxAmount).Sub(discount)
	return out
}
