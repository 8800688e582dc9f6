package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsPayload = `{"data":[
	{"id":1,"nome":"Whey Protein Isolate","preco":89.9,"descricao":"Proteína isolada de rápida absorção","categoria":"proteinas","marca":"Iso","em_destaque":true,"imagem":{"url":"/uploads/whey.png"}},
	{"id":2,"nome":"Iso Blend","preco":120,"descricao":"Blend com whey concentrado","categoria":"proteinas","marca":"Iso","imagem":{"url":"https://cdn.example.com/blend.png"}},
	{"id":3,"preco":45.5,"descricao":"Creatina pura","categoria":"Creatinas"},
	{"id":4,"nome":"Barra Proteica","descricao":"","categoria":"snacks","preco_antigo":12.5,"preco":9.9}
]}`

const bannersPayload = `{"data":[
	{"id":1,"titulo":"Semana do Whey","destaque_verde":"40% OFF","subtitulo":"Só até domingo","imagem":{"url":"/uploads/banner.png"}},
	{"id":2}
]}`

func newLoadedCache(t *testing.T, productsStatus, bannersStatus int) (*Cache, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/produtos", func(w http.ResponseWriter, r *http.Request) {
		if productsStatus != http.StatusOK {
			w.WriteHeader(productsStatus)
			return
		}
		w.Write([]byte(productsPayload))
	})
	mux.HandleFunc("/hero-banners", func(w http.ResponseWriter, r *http.Request) {
		if bannersStatus != http.StatusOK {
			w.WriteHeader(bannersStatus)
			return
		}
		w.Write([]byte(bannersPayload))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cache := NewCache(upstream.NewClient(srv.URL), "http://backend.local")
	cache.Load(context.Background())
	return cache, srv
}

func TestLoadNormalizesProducts(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusOK, http.StatusOK)

	products := cache.Products()
	require.Len(t, products, 4)

	whey := products[0]
	assert.Equal(t, int64(8990), whey.Price)
	assert.Equal(t, "http://backend.local/uploads/whey.png", whey.Image)
	assert.True(t, whey.Featured)

	blend := products[1]
	assert.Equal(t, int64(12000), blend.Price)
	assert.Equal(t, "https://cdn.example.com/blend.png", blend.Image, "absolute URLs pass through untouched")

	unnamed := products[2]
	assert.Equal(t, "Produto sem nome", unnamed.Name)
	assert.Equal(t, "/placeholder.png", unnamed.Image)

	bar := products[3]
	assert.Equal(t, int64(990), bar.Price)
	assert.Equal(t, int64(1250), bar.OldPrice)
}

func TestLoadNormalizesBanners(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusOK, http.StatusOK)

	banners := cache.Banners()
	require.Len(t, banners, 2)
	assert.Equal(t, "Semana do Whey", banners[0].Title)
	assert.Equal(t, "http://backend.local/uploads/banner.png", banners[0].Image)
	assert.Equal(t, "Oferta", banners[1].Title, "missing title gets the placeholder")
	assert.Equal(t, "/placeholder.png", banners[1].Image)
}

func TestLoadFailuresAreIndependent(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusOK, http.StatusInternalServerError)

	assert.True(t, cache.Loaded(), "a failed fetch still completes the load")
	assert.Len(t, cache.Products(), 4)
	assert.Empty(t, cache.Banners())
}

func TestLoadTotalFailureLeavesEmptyLists(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusBadGateway, http.StatusBadGateway)

	assert.True(t, cache.Loaded())
	assert.Empty(t, cache.Products())
	assert.Empty(t, cache.Banners())
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusOK, http.StatusOK)

	results := cache.Search("WHEY")
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].ID, "matched by name")
	assert.Equal(t, int64(2), results[1].ID, "matched by description only")

	assert.Len(t, cache.Search(""), 4, "empty term matches everything")
	assert.Empty(t, cache.Search("inexistente"))
}

func TestByCategoryIsCaseInsensitive(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusOK, http.StatusOK)

	assert.Len(t, cache.ByCategory("PROTEINAS"), 2)
	assert.Len(t, cache.ByCategory("creatinas"), 1)
	assert.Empty(t, cache.ByCategory("outros2"))
}

func TestFeaturedFallsBackToFirstN(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusOK, http.StatusOK)

	featured := cache.Featured(2)
	require.Len(t, featured, 1)
	assert.True(t, featured[0].Featured)

	empty, _ := newLoadedCache(t, http.StatusBadGateway, http.StatusOK)
	assert.Empty(t, empty.Featured(2))
}

func TestProductLookup(t *testing.T) {
	cache, _ := newLoadedCache(t, http.StatusOK, http.StatusOK)

	p, ok := cache.Product(3)
	require.True(t, ok)
	assert.Equal(t, int64(4550), p.Price)

	_, ok = cache.Product(99)
	assert.False(t, ok)
}

func TestCentavosParsing(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"89.9", 8990},
		{"89.99", 8999},
		{"120", 12000},
		{"120.505", 12050},
		{"-3.5", -350},
		{"abc", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, centavos(tc.raw), "raw=%q", tc.raw)
	}
}
