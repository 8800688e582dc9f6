package upstream

import (
	"context"
	"encoding/json"
	"net/http"
)

// ProductEntry is a raw product record with the backend's field names.
// Normalization into the storefront shape happens in the catalog cache.
type ProductEntry struct {
	ID          int64       `json:"id"`
	DocumentID  string      `json:"documentId"`
	Nome        string      `json:"nome"`
	Preco       json.Number `json:"preco"`
	PrecoAntigo json.Number `json:"preco_antigo"`
	Descricao   string      `json:"descricao"`
	Categoria   string      `json:"categoria"`
	Marca       string      `json:"marca"`
	EmDestaque  bool        `json:"em_destaque"`
	Imagem      *MediaEntry `json:"imagem"`
}

// BannerEntry is a raw hero banner record.
type BannerEntry struct {
	ID            int64       `json:"id"`
	Titulo        string      `json:"titulo"`
	DestaqueVerde string      `json:"destaque_verde"`
	Subtitulo     string      `json:"subtitulo"`
	Descricao     string      `json:"descricao"`
	Imagem        *MediaEntry `json:"imagem"`
}

// MediaEntry is an uploaded media reference. URL may be absolute (external
// CDN) or relative to the backend host.
type MediaEntry struct {
	URL string `json:"url"`
}

type productListEnvelope struct {
	Data []ProductEntry `json:"data"`
}

type bannerListEnvelope struct {
	Data []BannerEntry `json:"data"`
}

// Products lists the full catalog via GET /produtos.
func (c *Client) Products(ctx context.Context) ([]ProductEntry, error) {
	var env productListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/produtos?populate=*", "", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Banners lists the promotional banners via GET /hero-banners.
func (c *Client) Banners(ctx context.Context) ([]BannerEntry, error) {
	var env bannerListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/hero-banners?populate=*", "", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}
