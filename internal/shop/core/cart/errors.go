package cart

import "errors"

var (
	ErrItemNotInCart   = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrStockExceeded   = errors.New("quantity exceeds available stock")
	ErrProductIDEmpty  = errors.New("product id is required")
)
