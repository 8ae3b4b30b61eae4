package settings

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/internal/repo"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
)

// Repository persists settings rows.
type Repository struct {
	repo.Base
}

// NewRepository constructs a settings repository bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// FindByKey loads one setting. Missing keys return gorm.ErrRecordNotFound.
func (r *Repository) FindByKey(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.DB(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// List returns every setting ordered by key.
func (r *Repository) List(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	if err := r.DB(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new setting row.
func (r *Repository) Create(ctx context.Context, setting *models.Setting) error {
	return r.DB(ctx).Create(setting).Error
}

// Save persists every column of an existing row.
func (r *Repository) Save(ctx context.Context, setting *models.Setting) error {
	return r.DB(ctx).Save(setting).Error
}

// UpdateValue overwrites the stored text for key.
func (r *Repository) UpdateValue(ctx context.Context, key string, value *string) error {
	return r.DB(ctx).
		Model(&models.Setting{}).
		Where("key = ?", key).
		Updates(map[string]any{"value": value, "updated_at": time.Now().UTC()}).Error
}

// Delete removes the row for key and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, key string) (bool, error) {
	res := r.DB(ctx).Where("key = ?", key).Delete(&models.Setting{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
