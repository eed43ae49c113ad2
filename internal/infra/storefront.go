package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/clientcredentials"

	"merchquote/internal/config"
	"merchquote/internal/pricing"
)

// Storefront cache keys. Catalog payloads are cached read-through so a burst
// of quoting on the same product hits the shop API once per TTL.
const (
	cacheKeyProduct = "storefront:product:%d"
	cacheKeyAddons  = "storefront:addons"
)

// productEnvelope mirrors the storefront API product payload.
type productEnvelope struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	BasePrice  int64  `json:"base_price"`
	HasOptions bool   `json:"has_options"`
	Options    []struct {
		Name     string `json:"name"`
		Required bool   `json:"required"`
		Values   []struct {
			Text             string `json:"text"`
			AdditionalAmount int64  `json:"additional_amount"`
		} `json:"values"`
	} `json:"options"`
	Variants []struct {
		Options          map[string]string `json:"options"`
		AdditionalAmount int64             `json:"additional_amount"`
		StockQuantity    int               `json:"stock_quantity"`
		Selling          bool              `json:"selling"`
	} `json:"variants"`
}

type productListEnvelope struct {
	Data  []productEnvelope `json:"data"`
	Total int64             `json:"total"`
}

// StorefrontClient talks to the shop's catalog API using OAuth2 client
// credentials. All calls go through the circuit breaker; successful catalog
// reads are cached in redis.
type StorefrontClient struct {
	baseURL    string
	httpClient *http.Client
	rdb        *redis.Client
	cb         *CircuitBreaker
	cacheTTL   time.Duration
}

func NewStorefrontClient(cfg *config.Config, rdb *redis.Client, cb *CircuitBreaker) *StorefrontClient {
	cc := clientcredentials.Config{
		ClientID:     cfg.StorefrontClientID,
		ClientSecret: cfg.StorefrontClientSecret,
		TokenURL:     cfg.StorefrontTokenURL,
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 15 * time.Second

	return &StorefrontClient{
		baseURL:    cfg.StorefrontBaseURL,
		httpClient: httpClient,
		rdb:        rdb,
		cb:         cb,
		cacheTTL:   time.Duration(cfg.StorefrontCacheTTLSeconds) * time.Second,
	}
}

// CircuitState exposes the breaker state for the health endpoint.
func (c *StorefrontClient) CircuitState() string { return c.cb.State().String() }

// FetchCatalog returns the full pricing catalog for one product.
func (c *StorefrontClient) FetchCatalog(ctx context.Context, productID int64) (pricing.Catalog, error) {
	key := fmt.Sprintf(cacheKeyProduct, productID)

	var env productEnvelope
	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		if json.Unmarshal(cached, &env) == nil {
			return toCatalog(env), nil
		}
	}

	if err := c.getJSON(ctx, fmt.Sprintf("/api/products/%d", productID), &env); err != nil {
		return pricing.Catalog{}, err
	}

	if raw, err := json.Marshal(env); err == nil {
		c.rdb.Set(ctx, key, raw, c.cacheTTL)
	}
	return toCatalog(env), nil
}

// SearchProducts queries the storefront catalog. Results are not cached; the
// search surface changes with stock too often to be worth it.
func (c *StorefrontClient) SearchProducts(ctx context.Context, query string, page, limit int) ([]pricing.Product, int64, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var env productListEnvelope
	if err := c.getJSON(ctx, "/api/products?"+q.Encode(), &env); err != nil {
		return nil, 0, err
	}

	products := make([]pricing.Product, 0, len(env.Data))
	for _, p := range env.Data {
		products = append(products, pricing.Product{
			ID:         p.ID,
			Code:       p.Code,
			Name:       p.Name,
			BasePrice:  p.BasePrice,
			HasOptions: p.HasOptions,
		})
	}
	return products, env.Total, nil
}

// FetchAddons returns the add-on products attachable to any line.
func (c *StorefrontClient) FetchAddons(ctx context.Context) ([]pricing.AddonProduct, error) {
	var envs []productEnvelope
	if cached, err := c.rdb.Get(ctx, cacheKeyAddons).Bytes(); err == nil {
		if json.Unmarshal(cached, &envs) == nil {
			return toAddons(envs), nil
		}
	}

	var list productListEnvelope
	if err := c.getJSON(ctx, "/api/products?category=addon&limit=200", &list); err != nil {
		return nil, err
	}
	envs = list.Data

	if raw, err := json.Marshal(envs); err == nil {
		c.rdb.Set(ctx, cacheKeyAddons, raw, c.cacheTTL)
	}
	return toAddons(envs), nil
}

// getJSON runs one authenticated GET through the circuit breaker.
func (c *StorefrontClient) getJSON(ctx context.Context, path string, out any) error {
	return c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("storefront: create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("storefront: unreachable: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			// A clean "no such product" is a healthy upstream; keep it out
			// of the breaker's failure count.
			return SkipBreaker(pricing.ErrNotFound)
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("storefront: returned %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("storefront: decode response: %w", err)
		}
		return nil
	})
}

func toCatalog(env productEnvelope) pricing.Catalog {
	c := pricing.Catalog{
		Product: pricing.Product{
			ID:         env.ID,
			Code:       env.Code,
			Name:       env.Name,
			BasePrice:  env.BasePrice,
			HasOptions: env.HasOptions,
		},
	}
	for _, o := range env.Options {
		opt := pricing.ProductOption{Name: o.Name, Required: o.Required}
		for _, v := range o.Values {
			opt.Values = append(opt.Values, pricing.OptionValue{Text: v.Text, AdditionalAmount: v.AdditionalAmount})
		}
		c.Options = append(c.Options, opt)
	}
	for _, v := range env.Variants {
		c.Variants = append(c.Variants, pricing.Variant{
			Options:          v.Options,
			AdditionalAmount: v.AdditionalAmount,
			StockQuantity:    v.StockQuantity,
			Selling:          v.Selling,
		})
	}
	return c
}

func toAddons(envs []productEnvelope) []pricing.AddonProduct {
	addons := make([]pricing.AddonProduct, 0, len(envs))
	for _, env := range envs {
		cat := toCatalog(env)
		addons = append(addons, pricing.AddonProduct{
			ID:       cat.Product.ID,
			Code:     cat.Product.Code,
			Name:     cat.Product.Name,
			Price:    cat.Product.BasePrice,
			Options:  cat.Options,
			Variants: cat.Variants,
		})
	}
	return addons
}
