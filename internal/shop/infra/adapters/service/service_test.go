package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-cart/internal/pkg/cache"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
	"github.com/jcmexdev/storefront-cart/internal/shop/infra/adapters/service"
)

func TestHTTPProductLookup(t *testing.T) {
	ctx := context.Background()

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/products/p1":
			_, _ = w.Write([]byte(`{"_id":"p1","name":"Keyboard","image":"/images/p1.jpg","price":59.99,"countInStock":4}`))
		case "/api/products/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"database unavailable"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Product not found"}`))
		}
	}))
	defer srv.Close()

	lookup := service.NewHTTPProductLookup(srv.URL, service.NewHTTPClient(time.Second, "tok"))

	t.Run("Success", func(t *testing.T) {
		p, err := lookup.GetProduct(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, "Keyboard", p.Name)
		assert.Equal(t, "/images/p1.jpg", p.ImageRef)
		assert.Equal(t, 4, p.StockLimit)
		assert.True(t, decimal.RequireFromString("59.99").Equal(p.Price), p.Price.String())
		assert.Equal(t, "Bearer tok", auth)
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := lookup.GetProduct(ctx, "missing")
		assert.ErrorIs(t, err, ports.ErrProductNotFound)
	})

	t.Run("Server error", func(t *testing.T) {
		_, err := lookup.GetProduct(ctx, "broken")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ports.ErrProductNotFound)
		assert.Contains(t, err.Error(), "database unavailable")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := lookup.GetProduct(cctx, "p1")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPOrderSubmitter(t *testing.T) {
	ctx := context.Background()
	order := &entity.OrderRequest{
		Items: []entity.OrderItem{
			{ProductID: "p1", Name: "Keyboard", Quantity: 2, ImageRef: "/images/p1.jpg", UnitPrice: decimal.RequireFromString("60.00")},
		},
		ShippingAddress: entity.ShippingAddress{Street: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   entity.PaymentStripe,
		TotalPrice:      decimal.RequireFromString("138.00"),
		IdempotencyKey:  "sess-1",
	}

	t.Run("Success", func(t *testing.T) {
		var body map[string]any
		var key string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/orders", r.URL.Path)
			key = r.Header.Get("X-Idempotency-Key")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"_id":"o-1"}`))
		}))
		defer srv.Close()

		sub := service.NewHTTPOrderSubmitter(srv.URL, service.NewHTTPClient(time.Second, ""))
		id, err := sub.SubmitOrder(ctx, order)

		require.NoError(t, err)
		assert.Equal(t, "o-1", id)
		assert.Equal(t, "sess-1", key)
		assert.Equal(t, "Stripe", body["paymentMethod"])
		assert.Equal(t, 138.0, body["totalPrice"])
		addr := body["shippingAddress"].(map[string]any)
		assert.Equal(t, "1 Main St", addr["address"])
		assert.Equal(t, "12345", addr["postalCode"])
		items := body["orderItems"].([]any)
		require.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.Equal(t, "p1", item["product"])
		assert.Equal(t, 2.0, item["qty"])
		assert.Equal(t, 60.0, item["price"])
	})

	t.Run("Rejection carries the server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Keyboard is out of stock"}`))
		}))
		defer srv.Close()

		sub := service.NewHTTPOrderSubmitter(srv.URL, service.NewHTTPClient(time.Second, ""))
		_, err := sub.SubmitOrder(ctx, order)

		var subErr *ports.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, http.StatusBadRequest, subErr.Status)
		assert.Equal(t, "Keyboard is out of stock", subErr.Message)
	})

	t.Run("Plain text rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gateway down", http.StatusBadGateway)
		}))
		defer srv.Close()

		sub := service.NewHTTPOrderSubmitter(srv.URL, service.NewHTTPClient(time.Second, ""))
		_, err := sub.SubmitOrder(ctx, order)

		var subErr *ports.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, "gateway down", subErr.Message)
	})

	t.Run("Response without id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		sub := service.NewHTTPOrderSubmitter(srv.URL, service.NewHTTPClient(time.Second, ""))
		_, err := sub.SubmitOrder(ctx, order)
		assert.Error(t, err)
	})
}

type countingLookup struct {
	calls atomic.Int32
	err   error
}

func (c *countingLookup) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &entity.Product{ID: id, Name: "Mouse", ImageRef: "/m.jpg", Price: decimal.RequireFromString("10.50"), StockLimit: 3}, nil
}

func setupCached(t *testing.T) (*service.CachedProductLookup, *countingLookup, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), "shop")
	t.Cleanup(func() { _ = c.Close() })
	next := &countingLookup{}
	return service.NewCachedProductLookup(next, c, time.Minute), next, mr
}

func TestCachedProductLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Second lookup is served from cache", func(t *testing.T) {
		lookup, next, mr := setupCached(t)

		first, err := lookup.GetProduct(ctx, "p2")
		require.NoError(t, err)
		second, err := lookup.GetProduct(ctx, "p2")
		require.NoError(t, err)

		assert.Equal(t, int32(1), next.calls.Load())
		assert.Equal(t, first.Name, second.Name)
		assert.True(t, first.Price.Equal(second.Price))
		assert.True(t, mr.Exists("shop:product:p2"))
	})

	t.Run("Expired entry is fetched again", func(t *testing.T) {
		lookup, next, mr := setupCached(t)
		_, err := lookup.GetProduct(ctx, "p2")
		require.NoError(t, err)

		mr.FastForward(2 * time.Minute)
		_, err = lookup.GetProduct(ctx, "p2")
		require.NoError(t, err)

		assert.Equal(t, int32(2), next.calls.Load())
	})

	t.Run("Not found is not cached", func(t *testing.T) {
		lookup, next, mr := setupCached(t)
		next.err = ports.ErrProductNotFound

		_, err := lookup.GetProduct(ctx, "gone")
		assert.ErrorIs(t, err, ports.ErrProductNotFound)
		_, err = lookup.GetProduct(ctx, "gone")
		assert.ErrorIs(t, err, ports.ErrProductNotFound)

		assert.Equal(t, int32(2), next.calls.Load())
		assert.False(t, mr.Exists("shop:product:gone"))
	})

	t.Run("Unavailable cache falls through", func(t *testing.T) {
		lookup, next, mr := setupCached(t)
		mr.Close()

		p, err := lookup.GetProduct(ctx, "p2")

		require.NoError(t, err)
		assert.Equal(t, "Mouse", p.Name)
		assert.Equal(t, int32(1), next.calls.Load())
	})

	t.Run("Corrupt entry is replaced", func(t *testing.T) {
		lookup, next, mr := setupCached(t)
		require.NoError(t, mr.Set("shop:product:p2", "{not json"))

		_, err := lookup.GetProduct(ctx, "p2")

		require.NoError(t, err)
		assert.Equal(t, int32(1), next.calls.Load())
		got, err := mr.Get("shop:product:p2")
		require.NoError(t, err)
		assert.Contains(t, got, `"_id":"p2"`)
	})

	t.Run("Lookup errors pass through", func(t *testing.T) {
		lookup, next, _ := setupCached(t)
		next.err = errors.New("timeout")

		_, err := lookup.GetProduct(ctx, "p2")
		assert.EqualError(t, err, "timeout")
	})
}
