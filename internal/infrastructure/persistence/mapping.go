package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

// EntryMapping records which CMS entry corresponds to a commerce entity.
// One row per (entity type, commerce id).
type EntryMapping struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntityType string    `gorm:"size:64;not null;uniqueIndex:idx_entry_mapping_entity"`
	CommerceID string    `gorm:"size:128;not null;uniqueIndex:idx_entry_mapping_entity"`
	RemoteID   string    `gorm:"size:128;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for EntryMapping
func (EntryMapping) TableName() string {
	return "entry_mappings"
}

// GormEntryMappingRepository persists entry mappings with gorm
type GormEntryMappingRepository struct {
	db *gorm.DB
}

// NewGormEntryMappingRepository creates a new GormEntryMappingRepository
func NewGormEntryMappingRepository(db *gorm.DB) *GormEntryMappingRepository {
	return &GormEntryMappingRepository{db: db}
}

// RemoteID returns the CMS entry id recorded for a commerce entity
func (r *GormEntryMappingRepository) RemoteID(ctx context.Context, t domainsync.EntityType, commerceID string) (string, error) {
	var mapping EntryMapping
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND commerce_id = ?", t.String(), commerceID).
		First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s %s", domainsync.ErrMappingNotFound, t, commerceID)
	}
	if err != nil {
		return "", err
	}
	return mapping.RemoteID, nil
}

// Save records or replaces the remote id for a commerce entity
func (r *GormEntryMappingRepository) Save(ctx context.Context, t domainsync.EntityType, commerceID, remoteID string) error {
	mapping := EntryMapping{
		ID:         uuid.New(),
		EntityType: t.String(),
		CommerceID: commerceID,
		RemoteID:   remoteID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_type"}, {Name: "commerce_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"remote_id", "updated_at"}),
		}).
		Create(&mapping).Error
}

// Delete removes the mapping for a commerce entity. Deleting a mapping
// that does not exist is not an error.
func (r *GormEntryMappingRepository) Delete(ctx context.Context, t domainsync.EntityType, commerceID string) error {
	return r.db.WithContext(ctx).
		Where("entity_type = ? AND commerce_id = ?", t.String(), commerceID).
		Delete(&EntryMapping{}).Error
}

// Ensure GormEntryMappingRepository implements EntryMappingRepository
var _ domainsync.EntryMappingRepository = (*GormEntryMappingRepository)(nil)
