package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/inventory"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/warehouse"
)

// --- Inventory ---

func TestInventoryReserve(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reservations", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"reservationId":"res-42"}`)
	}))
	defer srv.Close()

	c := NewInventoryClient(srv.URL, srv.Client())
	id, err := c.Reserve(context.Background(), []inventory.Item{
		{ProductID: "p1", Quantity: 2, Unit: "unit"},
	}, "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "res-42", id)
	assert.Equal(t, "tok-1", gotBody["idempotencyToken"])
	items, ok := gotBody["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestInventoryReserve_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewInventoryClient(srv.URL, srv.Client())
	_, err := c.Reserve(context.Background(), nil, "tok-1")

	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestInventoryReserve_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewInventoryClient(srv.URL, srv.Client())
	_, err := c.Reserve(context.Background(), nil, "tok-1")

	require.Error(t, err)
}

func TestInventoryRelease_GoneIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/reservations/res-42", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewInventoryClient(srv.URL, srv.Client())
	require.NoError(t, c.Release(context.Background(), "res-42"))
}

func TestInventoryRelease_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewInventoryClient(srv.URL, srv.Client())
	require.Error(t, c.Release(context.Background(), "res-42"))
}

// --- Catalog ---

func TestCatalogBestPromotion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/p1/promotions/best", r.URL.Path)
		assert.Equal(t, "client-1", r.URL.Query().Get("clientId"))
		io.WriteString(w, `{"listPrice":10.00,"finalPrice":8.50,"campaignId":"camp-1","discountType":"percentage","discountValue":15}`)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, srv.Client())
	q, err := c.BestPromotion(context.Background(), "p1", "client-1")

	require.NoError(t, err)
	require.NotNil(t, q)
	assert.True(t, decimal.RequireFromString("10.00").Equal(q.ListPrice))
	assert.True(t, decimal.RequireFromString("8.50").Equal(q.FinalPrice))
	assert.Equal(t, "camp-1", q.CampaignID)
	assert.Equal(t, "percentage", q.DiscountType)
}

func TestCatalogBestPromotion_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, srv.Client())
	q, err := c.BestPromotion(context.Background(), "p1", "client-1")

	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestCatalogAllPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/p1/prices", r.URL.Path)
		io.WriteString(w, `[12.00, 9.50, 11.00]`)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, srv.Client())
	prices, err := c.AllPrices(context.Background(), "p1")

	require.NoError(t, err)
	require.Len(t, prices, 3)
	assert.True(t, decimal.RequireFromString("9.50").Equal(prices[1]))
}

func TestCatalogRevalidatePromotion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaigns/camp-1/validate", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("productId"))
		io.WriteString(w, `{"valid":true}`)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, srv.Client())
	valid, err := c.RevalidatePromotion(context.Background(), "camp-1", "p1")

	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCatalogRevalidatePromotion_UnknownCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, srv.Client())
	valid, err := c.RevalidatePromotion(context.Background(), "camp-1", "p1")

	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCatalogClientLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients/client-1/location", r.URL.Path)
		io.WriteString(w, `{"lat":-2.19616,"lng":-79.88621}`)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, srv.Client())
	pt, err := c.ClientLocation(context.Background(), "client-1")

	require.NoError(t, err)
	require.NotNil(t, pt)
	assert.Equal(t, -2.19616, pt.Lat)
	assert.Equal(t, -79.88621, pt.Lng)
}

func TestCatalogAssignedSeller_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, srv.Client())
	seller, err := c.AssignedSeller(context.Background(), "client-1")

	require.NoError(t, err)
	assert.Empty(t, seller)
}

// --- Cart ---

func TestCartGetCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/carts", r.URL.Path)
		assert.Equal(t, "client-1", r.URL.Query().Get("ownerId"))
		assert.Equal(t, "seller-1", r.URL.Query().Get("sellerId"))
		io.WriteString(w, `{
			"id":"cart-1","clientId":"client-1",
			"lines":[{"productId":"p1","sku":"SKU-1","name":"Widget","quantity":2,"unit":"unit"}]
		}`)
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	seller := "seller-1"
	crt, err := c.GetCart(context.Background(), "client-1", &seller)

	require.NoError(t, err)
	require.NotNil(t, crt)
	assert.Equal(t, "cart-1", crt.ID)
	assert.Equal(t, "client-1", crt.ClientID)
	require.Len(t, crt.Lines, 1)
	assert.Equal(t, "p1", crt.Lines[0].ProductID)
	assert.Equal(t, 2, crt.Lines[0].Quantity)
}

func TestCartGetCart_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	crt, err := c.GetCart(context.Background(), "client-1", nil)

	require.NoError(t, err)
	assert.Nil(t, crt)
}

func TestCartClearByID_AlreadyCleared(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/carts/cart-1", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, srv.Client())
	require.NoError(t, c.ClearByID(context.Background(), "cart-1"))
}

// --- Warehouse ---

func TestWarehouseConfirmPicking(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pickings/confirm", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewWarehouseClient(srv.URL, srv.Client())
	token := "res-1"
	require.NoError(t, c.ConfirmPicking(context.Background(), "o1", &token))

	assert.Equal(t, "o1", gotBody["orderId"])
	assert.Equal(t, "res-1", gotBody["reservationId"])
}

func TestWarehouseConfirmPicking_NoReservation(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
	}))
	defer srv.Close()

	c := NewWarehouseClient(srv.URL, srv.Client())
	require.NoError(t, c.ConfirmPicking(context.Background(), "o1", nil))

	_, present := gotBody["reservationId"]
	assert.False(t, present)
}

func TestWarehouseGetPicking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pickings/pick-1", r.URL.Path)
		io.WriteString(w, `{"id":"pick-1","orderId":"o1"}`)
	}))
	defer srv.Close()

	c := NewWarehouseClient(srv.URL, srv.Client())
	p, err := c.GetPicking(context.Background(), "pick-1")

	require.NoError(t, err)
	assert.Equal(t, "pick-1", p.ID)
	assert.Equal(t, "o1", p.OrderID)
}

func TestWarehouseGetPicking_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewWarehouseClient(srv.URL, srv.Client())
	_, err := c.GetPicking(context.Background(), "pick-1")

	require.ErrorIs(t, err, warehouse.ErrPickingNotFound)
}
