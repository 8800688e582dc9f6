package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/upstream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendProducts = `{"data":[
	{"id":1,"nome":"Whey Protein","preco":89.9,"categoria":"proteinas","em_destaque":true,"imagem":{"url":"/uploads/whey.png"}},
	{"id":2,"nome":"Creatina","preco":49.9,"categoria":"creatinas"}
]}`

type testApp struct {
	router *gin.Engine
	store  *storage.MemoryStore
}

// newTestApp wires the full stack against a fake backend and returns the
// router plus the shared client-state store.
func newTestApp(t *testing.T, backend http.Handler) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mux := http.NewServeMux()
	mux.HandleFunc("/produtos", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(backendProducts))
	})
	mux.HandleFunc("/hero-banners", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	if backend != nil {
		mux.Handle("/", backend)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	client := upstream.NewClient(srv.URL)

	cache := catalog.NewCache(client, srv.URL)
	cache.Load(context.Background())

	carts := cart.NewManager(store)
	sessions := session.NewManager(store, client)
	orch := checkout.NewOrchestrator(client, store, broker.NewEventPublisher(nil), 5, 10, "/account/orders")

	router := gin.New()
	NewHandler(cache, sessions, carts, orch, client, 4).SetupRoutes(router)
	return &testApp{router: router, store: store}
}

// do issues a request with a fixed session cookie so calls share state.
func (a *testApp) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "storefront_sid", Value: "test-sid"})

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSessionCookieIssuedWhenMissing(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "storefront_sid", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestReadinessReflectsCatalogLoad(t *testing.T) {
	app := newTestApp(t, nil)
	w := app.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListProductsSupportsSearchAndCategory(t *testing.T) {
	app := newTestApp(t, nil)

	all := decodeBody(t, app.do(http.MethodGet, "/api/v1/catalog/products", ""))
	assert.Len(t, all["data"], 2)

	byCat := decodeBody(t, app.do(http.MethodGet, "/api/v1/catalog/products?category=CREATINAS", ""))
	assert.Len(t, byCat["data"], 1)

	search := decodeBody(t, app.do(http.MethodGet, "/api/v1/catalog/products?q=whey", ""))
	assert.Len(t, search["data"], 1)
}

func TestGetProductNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/v1/catalog/products/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/v1/catalog/products/abc", "").Code)
}

func TestAddCartItemOpensPanel(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(8990), body["total"])
	assert.Equal(t, true, body["open"], "adding an item opens the cart panel")
}

func TestAddUnknownProductIs404(t *testing.T) {
	app := newTestApp(t, nil)
	w := app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":99}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartFlowAcrossRequests(t *testing.T) {
	app := newTestApp(t, nil)

	app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`)

	body := decodeBody(t, app.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Len(t, body["lines"], 2, "repeat add merges into one line")
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, float64(2*8990+4990), body["total"])

	// Decrement below one is ignored.
	app.do(http.MethodPatch, "/api/v1/cart/items/2", `{"delta":-1}`)
	body = decodeBody(t, app.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, float64(3), body["count"])

	w := app.do(http.MethodDelete, "/api/v1/cart/items/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, app.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Len(t, body["lines"], 1)

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/api/v1/cart/clear", "").Code)
	body = decodeBody(t, app.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, float64(0), body["count"])
}

func TestAdjustRejectsBadDelta(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)

	w := app.do(http.MethodPatch, "/api/v1/cart/items/1", `{"delta":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPanelOpenClose(t *testing.T) {
	app := newTestApp(t, nil)

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/api/v1/cart/open", "").Code)
	body := decodeBody(t, app.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, true, body["open"])

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/api/v1/cart/close", "").Code)
	body = decodeBody(t, app.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, false, body["open"])
}

func TestCheckoutRequiresAuthentication(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)

	w := app.do(http.MethodPost, "/api/v1/checkout", `{"payment_method":"pix_boleto"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decodeBody(t, w)["redirect"])
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/local" {
			w.Write([]byte(`{"jwt":"jwt-1","user":{"id":7,"username":"ana"}}`))
			return
		}
		http.NotFound(w, r)
	})
	app := newTestApp(t, backend)

	require.Equal(t, http.StatusOK,
		app.do(http.MethodPost, "/api/v1/auth/login", `{"identifier":"ana@example.com","password":"secret1"}`).Code)

	w := app.do(http.MethodPost, "/api/v1/checkout", `{"payment_method":"pix_boleto"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "/", decodeBody(t, w)["redirect"])
}

func TestCheckoutEndToEnd(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/local":
			w.Write([]byte(`{"jwt":"jwt-1","user":{"id":7,"username":"ana"}}`))
		case "/orders/checkout":
			assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"paymentUrl":"https://pay.example/abc"}`))
		default:
			http.NotFound(w, r)
		}
	})
	app := newTestApp(t, backend)

	app.do(http.MethodPost, "/api/v1/auth/login", `{"identifier":"ana@example.com","password":"secret1"}`)
	app.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)

	est := decodeBody(t, app.do(http.MethodGet, "/api/v1/checkout/estimate?method=pix_boleto", ""))
	assert.Equal(t, float64(8990), est["total"])

	w := app.do(http.MethodPost, "/api/v1/checkout", `{"payment_method":"pix_boleto"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "https://pay.example/abc", body["payment_url"])
	assert.Equal(t, "/account/orders", body["redirect_to"])
	assert.Equal(t, true, body["open_in_new_context"])

	cartBody := decodeBody(t, app.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, float64(0), cartBody["count"], "successful checkout empties the cart")
}

func TestLoginFailureTranslatesMessage(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"status":400,"name":"ValidationError","message":"Invalid identifier or password"}}`))
	})
	app := newTestApp(t, backend)

	w := app.do(http.MethodPost, "/api/v1/auth/login", `{"identifier":"ana@example.com","password":"wrong1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "E-mail ou senha incorretos.", decodeBody(t, w)["error"])
}

func TestMeRequiresSession(t *testing.T) {
	app := newTestApp(t, nil)
	w := app.do(http.MethodGet, "/api/v1/auth/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decodeBody(t, w)["redirect"])
}
