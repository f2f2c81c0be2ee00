package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

func newTestRepo(t *testing.T) *GormEntryMappingRepository {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&EntryMapping{}))
	return NewGormEntryMappingRepository(db)
}

func TestMappingRepository_SaveAndLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domainsync.EntityTypeProduct, "prod_1", "301"))

	remoteID, err := repo.RemoteID(ctx, domainsync.EntityTypeProduct, "prod_1")
	assert.NoError(t, err)
	assert.Equal(t, "301", remoteID)
}

func TestMappingRepository_MissingMapping(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.RemoteID(context.Background(), domainsync.EntityTypeProduct, "prod_unknown")

	assert.ErrorIs(t, err, domainsync.ErrMappingNotFound)
}

func TestMappingRepository_SaveReplacesRemoteID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domainsync.EntityTypeProduct, "prod_1", "301"))
	require.NoError(t, repo.Save(ctx, domainsync.EntityTypeProduct, "prod_1", "302"))

	remoteID, err := repo.RemoteID(ctx, domainsync.EntityTypeProduct, "prod_1")
	assert.NoError(t, err)
	assert.Equal(t, "302", remoteID)

	var count int64
	repo.db.Model(&EntryMapping{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMappingRepository_SameCommerceIDAcrossTypes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domainsync.EntityTypeProduct, "shared_1", "100"))
	require.NoError(t, repo.Save(ctx, domainsync.EntityTypeRegion, "shared_1", "200"))

	productRemote, err := repo.RemoteID(ctx, domainsync.EntityTypeProduct, "shared_1")
	assert.NoError(t, err)
	assert.Equal(t, "100", productRemote)

	regionRemote, err := repo.RemoteID(ctx, domainsync.EntityTypeRegion, "shared_1")
	assert.NoError(t, err)
	assert.Equal(t, "200", regionRemote)
}

func TestMappingRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domainsync.EntityTypeProduct, "prod_1", "301"))
	require.NoError(t, repo.Delete(ctx, domainsync.EntityTypeProduct, "prod_1"))

	_, err := repo.RemoteID(ctx, domainsync.EntityTypeProduct, "prod_1")
	assert.ErrorIs(t, err, domainsync.ErrMappingNotFound)
}

func TestMappingRepository_DeleteMissingIsNoop(t *testing.T) {
	repo := newTestRepo(t)

	assert.NoError(t, repo.Delete(context.Background(), domainsync.EntityTypeProduct, "prod_ghost"))
}
