package memory

import (
	"time"

	"ai-chat-quota-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

const publicBundlesKey = "public-bundles"

// BundleCatalogCache keeps the public bundle listing for a short TTL.
type BundleCatalogCache struct {
	cache *cache.Cache
}

func NewBundleCatalogCache(ttl time.Duration) *BundleCatalogCache {
	return &BundleCatalogCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *BundleCatalogCache) Save(bundles []*dto.BundleResponse) {
	r.cache.Set(publicBundlesKey, bundles, cache.DefaultExpiration)
}

func (r *BundleCatalogCache) Get() ([]*dto.BundleResponse, bool) {
	if x, found := r.cache.Get(publicBundlesKey); found {
		return x.([]*dto.BundleResponse), true
	}
	return nil, false
}

func (r *BundleCatalogCache) Invalidate() {
	r.cache.Delete(publicBundlesKey)
}
