package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

func TestInMemoryEchoStore_MarkAndCheck(t *testing.T) {
	store := NewInMemoryEchoStore(3 * time.Second)
	ctx := context.Background()

	store.Mark(ctx, "prod_1", domainsync.SideCMS)

	assert.True(t, store.IsMarked(ctx, "prod_1", domainsync.SideCMS))
	assert.False(t, store.IsMarked(ctx, "prod_1", domainsync.SideCommerce))
	assert.False(t, store.IsMarked(ctx, "prod_2", domainsync.SideCMS))
}

func TestInMemoryEchoStore_SidesAreIndependent(t *testing.T) {
	store := NewInMemoryEchoStore(3 * time.Second)
	ctx := context.Background()

	store.Mark(ctx, "prod_1", domainsync.SideCMS)
	store.Mark(ctx, "prod_1", domainsync.SideCommerce)

	assert.True(t, store.IsMarked(ctx, "prod_1", domainsync.SideCMS))
	assert.True(t, store.IsMarked(ctx, "prod_1", domainsync.SideCommerce))
}

func TestInMemoryEchoStore_MarkerExpires(t *testing.T) {
	store := NewInMemoryEchoStore(3 * time.Second)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	store.Mark(ctx, "prod_1", domainsync.SideCMS)

	store.now = func() time.Time { return now.Add(2 * time.Second) }
	assert.True(t, store.IsMarked(ctx, "prod_1", domainsync.SideCMS))

	store.now = func() time.Time { return now.Add(4 * time.Second) }
	assert.False(t, store.IsMarked(ctx, "prod_1", domainsync.SideCMS))
}

func TestInMemoryEchoStore_ReMarkRefreshesWindow(t *testing.T) {
	store := NewInMemoryEchoStore(3 * time.Second)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	store.Mark(ctx, "prod_1", domainsync.SideCMS)

	store.now = func() time.Time { return now.Add(2 * time.Second) }
	store.Mark(ctx, "prod_1", domainsync.SideCMS)

	store.now = func() time.Time { return now.Add(4 * time.Second) }
	assert.True(t, store.IsMarked(ctx, "prod_1", domainsync.SideCMS))
}
