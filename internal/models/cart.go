package models

// Cart is the server-side cart of a user. PromoCode holds the code applied through
// the apply endpoint and is re-validated at checkout.
type Cart struct {
	Base
	UserID    string     `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	PromoCode string     `json:"promo_code" gorm:"type:varchar(50)"`
	Items     []CartItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

type CartItem struct {
	Base
	CartID          string         `json:"cart_id" gorm:"type:varchar(36);index;not null"`
	ProductDetailID string         `json:"product_detail_id" gorm:"type:varchar(36);not null"`
	ProductDetail   *ProductDetail `json:"product_detail,omitempty"`
	Quantity        int            `json:"quantity" gorm:"not null"`
}

// Lines converts the cart contents into pricing input.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, CartLine{ProductDetailID: item.ProductDetailID, Quantity: item.Quantity})
	}
	return lines
}
