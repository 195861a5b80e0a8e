package httpx

type ProductResponse struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
}

type OrderItemDTO struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
}

type ShippingAddressDTO struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemDTO     `json:"orderItems"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	TotalPrice      float64            `json:"totalPrice"`
}

type OrderResponse struct {
	ID              string             `json:"_id"`
	OrderItems      []OrderItemDTO     `json:"orderItems"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	TotalPrice      float64            `json:"totalPrice"`
	Status          string             `json:"status"`
	IsPaid          bool               `json:"isPaid"`
	CreatedAt       string             `json:"createdAt"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
