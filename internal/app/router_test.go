package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"example.com/marketplace/internal/events"
	"example.com/marketplace/internal/metrics"
	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/service"
	"example.com/marketplace/internal/storage"
	"example.com/marketplace/internal/storage/storagetest"
)

func init() { gin.SetMode(gin.TestMode) }

type testAPI struct {
	t        *testing.T
	db       *gorm.DB
	r        *gin.Engine
	events   *events.Recorder
	notifier *service.Notifier
}

func newTestAPI(t *testing.T) *testAPI {
	db := storagetest.NewDB(t)
	rec := &events.Recorder{}
	cfg := Config{Env: "test", JWTSecret: "test-secret", TokenTTL: time.Hour}
	n := service.NewNotifier(rec, nil)
	t.Cleanup(n.Wait)
	r := NewRouter(cfg, Deps{DB: db, Metrics: metrics.New(prometheus.NewRegistry()), Notifier: n})
	return &testAPI{t: t, db: db, r: r, events: rec, notifier: n}
}

func (a *testAPI) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers and logs in, returning the user id and bearer token.
func (a *testAPI) signup(email, role string) (uint, string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": email, "email": email, "password": "secret123", "role": role})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	u := decode[struct{ ID uint }](a.t, w)
	return u.ID, a.login(email, "secret123")
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[struct{ Token string }](a.t, w).Token
}

type orderBody struct {
	OrderID       uint
	Status        string
	Total         string
	PaymentMethod string
	Items         []itemBody
}

type itemBody struct {
	ItemID      uint
	ProductName string
	Quantity    int
	UnitPrice   string
	LineTotal   string
	Status      string
}

func shipping() gin.H {
	return gin.H{"name": "Ada", "line1": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US", "phone": "555"}
}

func TestHealthAndAuthGuards(t *testing.T) {
	a := newTestAPI(t)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/cart", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/cart", "garbage", nil).Code)

	_, buyer := a.signup("buyer@example.com", "")
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/seller/orders", buyer, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/admin/seed", buyer, nil).Code)

	w := a.do(http.MethodGet, "/api/auth/me", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "USER", decode[struct{ Role string }](t, w).Role)

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "buyer@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "X", "email": "buyer@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionCookie(t *testing.T) {
	a := newTestAPI(t)
	a.signup("buyer@example.com", "")

	w := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "buyer@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	a.r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	a := newTestAPI(t)
	sellerID, seller := a.signup("seller@example.com", "SELLER")
	_, buyer := a.signup("buyer@example.com", "")
	p := storagetest.CreateProduct(t, a.db, sellerID, "Widget", "10.00", 5)

	w := a.do(http.MethodPost, "/api/orders/checkout", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cart empty", decode[struct{ Error string }](t, w).Error)

	w = a.do(http.MethodPost, "/api/cart/items", buyer, gin.H{"productId": p.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20.00", decode[struct{ Subtotal string }](t, w).Subtotal)

	w = a.do(http.MethodPost, "/api/orders/checkout", buyer, gin.H{"shipping": shipping(), "paymentMethod": "COD"}, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	o := decode[orderBody](t, w)
	assert.Equal(t, "20.00", o.Total)
	assert.Equal(t, "PENDING", o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "PLACED", o.Items[0].Status)
	assert.Equal(t, "10.00", o.Items[0].UnitPrice)
	assert.Equal(t, "20.00", o.Items[0].LineTotal)
	assert.Equal(t, 3, storagetest.Stock(t, a.db, p.ID))
	a.notifier.Wait()
	require.Len(t, a.events.Events(), 1)

	w = a.do(http.MethodPost, "/api/orders/checkout", buyer, gin.H{"paymentMethod": "COD"}, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, o.OrderID, decode[orderBody](t, w).OrderID)

	w = a.do(http.MethodGet, "/api/orders", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]orderBody](t, w), 1)

	path := "/api/orders/" + itoa(o.OrderID)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, buyer, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, path, seller, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/orders/9999", buyer, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/orders/abc", buyer, nil).Code)
}

func TestCheckoutAcceptsEmptyChunkedBody(t *testing.T) {
	a := newTestAPI(t)
	sellerID, _ := a.signup("seller@example.com", "SELLER")
	buyerID, buyer := a.signup("buyer@example.com", "")
	p := storagetest.CreateProduct(t, a.db, sellerID, "Lamp", "5.00", 3)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(""))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+buyer)
		w := httptest.NewRecorder()
		a.r.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cart empty", decode[struct{ Error string }](t, w).Error)

	storagetest.AddToCart(t, a.db, buyerID, p.ID, 1)
	w = send()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	o := decode[orderBody](t, w)
	assert.Equal(t, "COD", o.PaymentMethod)
	assert.Equal(t, 2, storagetest.Stock(t, a.db, p.ID))
}

func TestCheckoutRejectsMalformedBody(t *testing.T) {
	a := newTestAPI(t)
	_, buyer := a.signup("buyer@example.com", "")

	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buyer)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad json", decode[struct{ Error string }](t, w).Error)
}

func TestCheckoutInsufficientStockReportsShortfalls(t *testing.T) {
	a := newTestAPI(t)
	sellerID, _ := a.signup("seller@example.com", "SELLER")
	buyerID, buyer := a.signup("buyer@example.com", "")
	p := storagetest.CreateProduct(t, a.db, sellerID, "Lamp", "5.00", 1)
	storagetest.AddToCart(t, a.db, buyerID, p.ID, 2)

	w := a.do(http.MethodPost, "/api/orders/checkout", buyer, gin.H{"paymentMethod": "CARD"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[struct {
		Error      string
		Shortfalls []struct {
			ProductName string
			Available   int
			Requested   int
		}
	}](t, w)
	assert.True(t, strings.HasPrefix(body.Error, "insufficient stock"))
	require.Len(t, body.Shortfalls, 1)
	assert.Equal(t, "Lamp", body.Shortfalls[0].ProductName)
	assert.Equal(t, 1, body.Shortfalls[0].Available)
	assert.Equal(t, 2, body.Shortfalls[0].Requested)
	assert.Equal(t, 1, storagetest.Stock(t, a.db, p.ID))
}

func TestCheckoutRejectsIncompleteShipping(t *testing.T) {
	a := newTestAPI(t)
	sellerID, _ := a.signup("seller@example.com", "SELLER")
	buyerID, buyer := a.signup("buyer@example.com", "")
	p := storagetest.CreateProduct(t, a.db, sellerID, "Lamp", "5.00", 1)
	storagetest.AddToCart(t, a.db, buyerID, p.ID, 1)

	w := a.do(http.MethodPost, "/api/orders/checkout", buyer, gin.H{"shipping": gin.H{"name": "Ada"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "shipping is missing")
}

func TestSellerFulfillment(t *testing.T) {
	a := newTestAPI(t)
	sellerID, seller := a.signup("seller@example.com", "SELLER")
	_, rival := a.signup("rival@example.com", "SELLER")
	buyerID, buyer := a.signup("buyer@example.com", "")
	p := storagetest.CreateProduct(t, a.db, sellerID, "Widget", "10.00", 5)
	storagetest.AddToCart(t, a.db, buyerID, p.ID, 1)

	w := a.do(http.MethodPost, "/api/orders/checkout", buyer, gin.H{"paymentMethod": "CARD"})
	require.Equal(t, http.StatusCreated, w.Code)
	o := decode[orderBody](t, w)
	assert.Equal(t, "PAID", o.Status)
	item := "/api/seller/orders/items/" + itoa(o.Items[0].ItemID)

	w = a.do(http.MethodGet, "/api/seller/orders", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]itemBody](t, w), 1)

	w = a.do(http.MethodGet, "/api/seller/orders", rival, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]itemBody](t, w))

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, item, seller, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, item, rival, nil).Code)

	w = a.do(http.MethodPut, item+"/status", seller, gin.H{"status": "SHIPPED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SHIPPED", decode[itemBody](t, w).Status)

	w = a.do(http.MethodPut, item+"/status", seller, gin.H{"status": "PROCESSING"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot change from SHIPPED to PROCESSING")

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPut, item+"/status", seller, gin.H{"status": "LOST"}).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPut, item+"/status", rival, gin.H{"status": "DELIVERED"}).Code)

	w = a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `marketplace_order_item_transitions_total{to="SHIPPED"} 1`)
	assert.Contains(t, w.Body.String(), `marketplace_checkouts_total{outcome="placed"} 1`)
}

func TestAdminEndpoints(t *testing.T) {
	a := newTestAPI(t)
	require.NoError(t, storage.SeedAdmin(a.db, "admin@example.com", "admin-pass"))
	admin := a.login("admin@example.com", "admin-pass")
	buyerID, buyer := a.signup("buyer@example.com", "")

	w := a.do(http.MethodPost, "/api/admin/seed", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[[]struct{ ID uint }](t, w)
	require.Len(t, products, 3)

	w = a.do(http.MethodPost, "/api/cart/items", buyer, gin.H{"productId": products[0].ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = a.do(http.MethodPost, "/api/orders/checkout", buyer, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	o := decode[orderBody](t, w)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/orders/"+itoa(o.OrderID), admin, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/admin/orders/"+itoa(o.OrderID), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/admin/orders/"+itoa(o.OrderID), admin, nil).Code)
	assert.Zero(t, storagetest.Count(t, a.db, &model.OrderItem{}, ""))

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/admin/users/"+itoa(buyerID), admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "buyer@example.com", "password": "secret123"}).Code)
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
