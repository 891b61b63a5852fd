package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog's view of a product: existence, display name and
// current price.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Catalog resolves product ids against the product service. It returns the
// entries the catalog knows about; callers decide whether a partial
// resolution is acceptable (creation requires all ids, read-time enrichment
// tolerates misses).
type Catalog interface {
	Validate(ctx context.Context, ids []string) ([]Product, error)
}

type CatalogHTTP struct {
	HTTP    *http.Client
	BaseURL string
}

func NewCatalogHTTP(baseURL string) *CatalogHTTP {
	return &CatalogHTTP{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: baseURL,
	}
}

func (c *CatalogHTTP) Validate(ctx context.Context, ids []string) ([]Product, error) {
	body, _ := json.Marshal(map[string][]string{"ids": ids})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/products/validate", c.BaseURL), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog validate: %s", res.Status)
	}
	var products []Product
	if err := json.NewDecoder(res.Body).Decode(&products); err != nil {
		return nil, err
	}
	return products, nil
}
