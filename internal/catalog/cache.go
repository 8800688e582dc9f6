// Package catalog holds the read-only product and banner snapshot fetched
// from the backend once at startup.
package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/upstream"
	"storefront/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults applied when the backend record is missing optional fields.
const (
	defaultProductName = "Produto sem nome"
	defaultCategory    = "outros"
	placeholderImage   = "/placeholder.png"
	defaultBannerTitle = "Oferta"
)

// Cache is the catalog snapshot plus its derived read-only views.
type Cache struct {
	client   *upstream.Client
	assetURL string
	logger   *zap.Logger

	mu       sync.RWMutex
	products []models.Product
	banners  []models.Banner
	loaded   bool
}

// NewCache creates an empty cache. assetURL is the backend base without the
// /api suffix, used to resolve relative image paths.
func NewCache(client *upstream.Client, assetURL string) *Cache {
	return &Cache{
		client:   client,
		assetURL: strings.TrimRight(assetURL, "/"),
		logger:   util.GetLogger(),
	}
}

// Load fetches products and banners in parallel. The two fetches succeed or
// fail independently: a failed fetch leaves its list empty and is not
// retried. Load always marks the cache as loaded.
func (c *Cache) Load(ctx context.Context) {
	ctx, span := util.StartSpan(ctx, "Catalog.Load")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CatalogLoadLatency.Observe(time.Since(start).Seconds())
	}()

	var (
		products []models.Product
		banners  []models.Banner
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := c.client.Products(gctx)
		if err != nil {
			util.CatalogLoadFailuresTotal.WithLabelValues("products").Inc()
			c.logger.Error("Failed to load products", zap.Error(err))
			return nil
		}
		products = make([]models.Product, 0, len(entries))
		for _, e := range entries {
			products = append(products, c.normalizeProduct(e))
		}
		return nil
	})

	g.Go(func() error {
		entries, err := c.client.Banners(gctx)
		if err != nil {
			util.CatalogLoadFailuresTotal.WithLabelValues("banners").Inc()
			c.logger.Error("Failed to load banners", zap.Error(err))
			return nil
		}
		banners = make([]models.Banner, 0, len(entries))
		for _, e := range entries {
			banners = append(banners, c.normalizeBanner(e))
		}
		return nil
	})

	_ = g.Wait()

	c.mu.Lock()
	c.products = products
	c.banners = banners
	c.loaded = true
	c.mu.Unlock()

	c.logger.Info("Catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("banners", len(banners)))
}

func (c *Cache) normalizeProduct(e upstream.ProductEntry) models.Product {
	p := models.Product{
		ID:          e.ID,
		DocumentID:  e.DocumentID,
		Name:        e.Nome,
		Price:       centavos(e.Preco.String()),
		OldPrice:    centavos(e.PrecoAntigo.String()),
		Description: e.Descricao,
		Category:    e.Categoria,
		Brand:       e.Marca,
		Featured:    e.EmDestaque,
	}
	if p.Name == "" {
		p.Name = defaultProductName
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}
	if e.Imagem != nil {
		p.Image = c.resolveImage(e.Imagem.URL)
	} else {
		p.Image = placeholderImage
	}
	return p
}

func (c *Cache) normalizeBanner(e upstream.BannerEntry) models.Banner {
	b := models.Banner{
		ID:          e.ID,
		Title:       e.Titulo,
		Highlight:   e.DestaqueVerde,
		Subtitle:    e.Subtitulo,
		Description: e.Descricao,
	}
	if b.Title == "" {
		b.Title = defaultBannerTitle
	}
	if e.Imagem != nil {
		b.Image = c.resolveImage(e.Imagem.URL)
	} else {
		b.Image = placeholderImage
	}
	return b
}

// resolveImage leaves absolute URLs untouched and joins relative upload
// paths to the backend host.
func (c *Cache) resolveImage(raw string) string {
	if raw == "" {
		return placeholderImage
	}
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return c.assetURL + raw
}

// Loaded reports whether Load has completed, successfully or not.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Products returns a copy of the product snapshot.
func (c *Cache) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Banners returns a copy of the banner snapshot.
func (c *Cache) Banners() []models.Banner {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Banner, len(c.banners))
	copy(out, c.banners)
	return out
}

// Product looks up a product by ID.
func (c *Cache) Product(id int64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Featured returns products flagged as featured, falling back to the first n
// products when nothing is flagged.
func (c *Cache) Featured(n int) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Product
	for _, p := range c.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		return out
	}
	if n > len(c.products) {
		n = len(c.products)
	}
	out = make([]models.Product, n)
	copy(out, c.products[:n])
	return out
}

// ByCategory returns products whose category tag matches, case-insensitively.
func (c *Cache) ByCategory(tag string) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Product
	for _, p := range c.products {
		if strings.EqualFold(p.Category, tag) {
			out = append(out, p)
		}
	}
	return out
}

// Search matches term as a case-insensitive substring of the product name or
// description. An empty term matches everything.
func (c *Cache) Search(term string) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		out := make([]models.Product, len(c.products))
		copy(out, c.products)
		return out
	}

	var out []models.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// centavos parses a backend decimal BRL amount into centavos. Absent or
// malformed values become zero.
func centavos(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	neg := false
	if strings.HasPrefix(raw, "-") {
		neg = true
		raw = raw[1:]
	}

	whole, frac := raw, ""
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		whole, frac = raw[:i], raw[i+1:]
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var cents int64
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0
		}
		cents = cents*10 + int64(r-'0')
	}
	if neg {
		cents = -cents
	}
	return cents
}
