package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-cart/internal/coordinator"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/catalog"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/orders"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/payments"
)

// Handler serves the product and order endpoints of the development backend.
type Handler struct {
	catalog *catalog.Catalog
	orders  *orders.Service
}

func NewHandler(c *catalog.Catalog, o *orders.Service) *Handler {
	return &Handler{catalog: c, orders: o}
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Price:        p.Price.InexactFloat64(),
		CountInStock: p.CountInStock,
	})
}

// CreateOrder answers 201 for a new order and 200 when the idempotency key
// was seen before.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	order, replayed, err := h.orders.Create(r.Context(), mapCreateOrder(req))
	if err != nil {
		status, msg := orderError(err)
		slog.WarnContext(r.Context(), "order rejected", "status", status, "error", err)
		writeError(w, status, msg)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, mapOrderToResponse(order))
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func orderError(err error) (int, string) {
	switch {
	case errors.Is(err, coordinator.ErrCompensationFailed):
		// stock or payment may still be held
		return http.StatusInternalServerError, "Server Error"
	case errors.Is(err, orders.ErrNoOrderItems):
		return http.StatusBadRequest, "No order items"
	case errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, catalog.ErrInsufficientStock),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, payments.ErrUnsupportedMethod):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, payments.ErrDeclined):
		return http.StatusPaymentRequired, err.Error()
	default:
		return http.StatusInternalServerError, "Server Error"
	}
}

func mapCreateOrder(req CreateOrderRequest) orders.CreateOrder {
	items := make([]orders.Item, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, orders.Item{
			ProductID: it.Product,
			Name:      it.Name,
			Image:     it.Image,
			Qty:       it.Qty,
			Price:     decimal.NewFromFloat(it.Price),
		})
	}
	return orders.CreateOrder{
		Items: items,
		ShippingAddress: orders.Address{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
		TotalPrice:    decimal.NewFromFloat(req.TotalPrice),
	}
}

func mapOrderToResponse(o *orders.Order) OrderResponse {
	items := make([]OrderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemDTO{
			Product: it.ProductID,
			Name:    it.Name,
			Qty:     it.Qty,
			Image:   it.Image,
			Price:   it.Price.InexactFloat64(),
		}
	}
	return OrderResponse{
		ID:         o.ID,
		OrderItems: items,
		ShippingAddress: ShippingAddressDTO{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice.InexactFloat64(),
		Status:        string(o.Status),
		IsPaid:        o.Status == orders.StatusPaid,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}
