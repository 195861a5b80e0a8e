package service

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
)

type productDTO struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
}

type orderItemDTO struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
}

type shippingAddressDTO struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type createOrderDTO struct {
	OrderItems      []orderItemDTO     `json:"orderItems"`
	ShippingAddress shippingAddressDTO `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	TotalPrice      float64            `json:"totalPrice"`
}

type createOrderResponseDTO struct {
	ID string `json:"_id"`
}

type errorDTO struct {
	Message string `json:"message"`
}

func productFromDTO(d productDTO) *entity.Product {
	return &entity.Product{
		ID:         d.ID,
		Name:       d.Name,
		ImageRef:   d.Image,
		Price:      decimal.NewFromFloat(d.Price),
		StockLimit: d.CountInStock,
	}
}

func productToDTO(p *entity.Product) productDTO {
	return productDTO{
		ID:           p.ID,
		Name:         p.Name,
		Image:        p.ImageRef,
		Price:        p.Price.InexactFloat64(),
		CountInStock: p.StockLimit,
	}
}

func orderToDTO(req *entity.OrderRequest) createOrderDTO {
	items := make([]orderItemDTO, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orderItemDTO{
			Product: it.ProductID,
			Name:    it.Name,
			Qty:     it.Quantity,
			Image:   it.ImageRef,
			Price:   it.UnitPrice.InexactFloat64(),
		})
	}
	return createOrderDTO{
		OrderItems: items,
		ShippingAddress: shippingAddressDTO{
			Address:    req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: string(req.PaymentMethod),
		TotalPrice:    req.TotalPrice.InexactFloat64(),
	}
}
