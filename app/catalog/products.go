package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/internal/cache"
	"github.com/mytheresa/storefront/models"
)

const (
	cachePrefix  = "products:"
	cacheListKey = cachePrefix + "all"
)

// ProductProvider is the product source the catalog reads from.
type ProductProvider interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// CachedProducts serves products from a TTL cache in front of a provider.
type CachedProducts struct {
	next  ProductProvider
	cache *cache.Cache
	ttl   time.Duration
}

func NewCachedProducts(next ProductProvider, c *cache.Cache, ttl time.Duration) *CachedProducts {
	return &CachedProducts{next: next, cache: c, ttl: ttl}
}

func (c *CachedProducts) ListProducts(ctx context.Context) ([]models.Product, error) {
	if v, ok := c.cache.Get(cacheListKey); ok {
		return v.([]models.Product), nil
	}
	products, err := c.next.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(cacheListKey, products, c.ttl)
	return products, nil
}

func (c *CachedProducts) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := cachePrefix + id.Hex()
	if v, ok := c.cache.Get(key); ok {
		p := v.(models.Product)
		return &p, nil
	}
	p, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, *p, c.ttl)
	return p, nil
}

// Invalidate drops every cached product so the next read goes to the API.
func (c *CachedProducts) Invalidate() {
	c.cache.DeleteByPrefix(cachePrefix)
}
