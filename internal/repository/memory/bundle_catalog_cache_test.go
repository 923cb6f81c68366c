package memory

import (
	"testing"
	"time"

	"ai-chat-quota-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleCatalogCache(t *testing.T) {
	c := NewBundleCatalogCache(time.Minute)

	_, found := c.Get()
	assert.False(t, found)

	listing := []*dto.BundleResponse{{Id: uuid.New(), Tier: "PRO"}}
	c.Save(listing)

	got, found := c.Get()
	require.True(t, found)
	assert.Equal(t, listing, got)

	c.Invalidate()
	_, found = c.Get()
	assert.False(t, found)
}

func TestBundleCatalogCache_Expires(t *testing.T) {
	c := NewBundleCatalogCache(10 * time.Millisecond)
	c.Save([]*dto.BundleResponse{})

	time.Sleep(30 * time.Millisecond)

	_, found := c.Get()
	assert.False(t, found)
}
