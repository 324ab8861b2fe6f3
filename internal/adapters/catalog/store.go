// Package catalog persists the media catalog in an embedded sqlite database.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

// record is the row shape. Language slots and the pinpoint live in JSON
// columns; timestamps are owned by the lifecycle manager, not gorm.
type record struct {
	ID          string    `gorm:"primaryKey"`
	Category    string    `gorm:"index;not null"`
	Subcategory string    `gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`

	Media    datatypes.JSONType[map[domain.Language]*domain.MediaSlot]
	Pinpoint datatypes.JSONType[*domain.Pinpoint]
}

func (record) TableName() string { return "display_media" }

type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the catalog database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Store{db: db}, nil
}

func toRecord(item *domain.MediaItem) record {
	return record{
		ID:          string(item.ID),
		Category:    item.Category,
		Subcategory: item.Subcategory,
		Media:       datatypes.NewJSONType(item.Media),
		Pinpoint:    datatypes.NewJSONType(item.Pinpoint),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func (r record) toItem() *domain.MediaItem {
	media := r.Media.Data()
	if media == nil {
		media = make(map[domain.Language]*domain.MediaSlot)
	}
	return &domain.MediaItem{
		ID:          domain.MediaID(r.ID),
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Media:       media,
		Pinpoint:    r.Pinpoint.Data(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (s *Store) Insert(ctx context.Context, item *domain.MediaItem) error {
	rec := toRecord(item)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.MediaID) (*domain.MediaItem, error) {
	var rec record
	err := s.db.WithContext(ctx).First(&rec, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return rec.toItem(), nil
}

func (s *Store) All(ctx context.Context) ([]*domain.MediaItem, error) {
	var recs []record
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	items := make([]*domain.MediaItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, rec.toItem())
	}
	return items, nil
}

func (s *Store) Save(ctx context.Context, item *domain.MediaItem) error {
	rec := toRecord(item)
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save media: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.MediaID) error {
	res := s.db.WithContext(ctx).Delete(&record{}, "id = ?", string(id))
	if res.Error != nil {
		return fmt.Errorf("delete media: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Options folds the distinct (category, subcategory) pairs into the derived
// category map. Blank subcategories count for category presence but are
// filtered out of the subcategory lists.
func (s *Store) Options(ctx context.Context) (core.CategoryOptions, error) {
	var rows []struct {
		Category    string
		Subcategory string
	}
	err := s.db.WithContext(ctx).Model(&record{}).
		Distinct("category", "subcategory").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	opts := make(core.CategoryOptions, len(rows))
	for _, row := range rows {
		if _, ok := opts[row.Category]; !ok {
			opts[row.Category] = []string{}
		}
		if row.Subcategory != "" {
			opts[row.Category] = append(opts[row.Category], row.Subcategory)
		}
	}
	return opts, nil
}

func (s *Store) FindOne(ctx context.Context, category, subcategory string) (*domain.MediaItem, error) {
	var rec record
	err := s.db.WithContext(ctx).
		Where("category = ? AND subcategory = ?", category, subcategory).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	return rec.toItem(), nil
}
