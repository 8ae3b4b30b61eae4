package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storeadmin-backend/internal/repo"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/pagination"
)

// Repository persists categories and products.
type Repository struct {
	repo.Base
}

// NewRepository binds a catalog repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Create(category).Error
}

func (r *Repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Save(category).Error
}

func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context, isActive *bool, query string) ([]models.Category, error) {
	q := r.DB(ctx).Model(&models.Category{})
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}
	if term := strings.TrimSpace(query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR slug LIKE ?)", like, like)
	}
	var rows []models.Category
	if err := q.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteCategory removes a category; its products keep existing with a null
// category. Reports whether a row was deleted.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) CountCategories(ctx context.Context) (int64, error) {
	return repo.Count[models.Category](r.DB(ctx))
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Save(product).Error
}

// FindByID loads a bare product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProduct loads a product with its category.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns products newest first using keyset pagination.
func (r *Repository) ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*pagination.Page[models.Product], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.DB(ctx).Model(&models.Product{}).Preload("Category")
	if filters.CategoryID != nil {
		q = q.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}
	if term := strings.TrimSpace(filters.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
	}
	var rows []models.Product
	if err := q.Scopes(pagination.Keyset(cursor, params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	items, next := pagination.Trim(rows, params.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &pagination.Page[models.Product]{Items: items, NextCursor: next}, nil
}

// DeleteProduct removes a product. Products referenced by order items fail
// with a foreign key violation.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	return repo.Count[models.Product](r.DB(ctx))
}
