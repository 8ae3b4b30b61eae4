package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/db"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/pagination"
)

// Service is the admin surface over categories and products.
type Service interface {
	ListCategories(ctx context.Context, isActive *bool, query string) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*pagination.Page[ProductDTO], error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type store interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	SaveCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, isActive *bool, query string) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*pagination.Page[models.Product], error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo store
	logg *logger.Logger
}

// NewService builds the catalog service.
func NewService(repo store, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListCategories(ctx context.Context, isActive *bool, query string) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx, isActive, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryFromModel(row))
	}
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := CategoryFromModel(*category)
	return &dto, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if slug == "" || slug != Slugify(slug) {
		fields["slug"] = "must contain lowercase letters, digits and hyphens"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid category", fields)
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, categoryWriteError(err, "create category")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"category_id": category.ID.String(), "slug": slug}), "category created")
	dto := CategoryFromModel(*category)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			fields["name"] = "required"
		}
		category.Name = name
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug == "" || slug != Slugify(slug) {
			fields["slug"] = "must contain lowercase letters, digits and hyphens"
		}
		category.Slug = slug
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid category", fields)
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, categoryWriteError(err, "update category")
	}
	dto := CategoryFromModel(*category)
	return &dto, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	deleted, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "category_id", id.String()), "category deleted")
	return nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*pagination.Page[ProductDTO], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := &pagination.Page[ProductDTO]{Items: make([]ProductDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, product := range page.Items {
		out.Items = append(out.Items, ProductFromModel(product))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ProductFromModel(*product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		SKU:         strings.TrimSpace(input.SKU),
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
		IsActive:    true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.checkProduct(ctx, product); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, productWriteError(err, "create product")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"product_id": product.ID.String(), "sku": product.SKU}), "product created")
	return s.GetProduct(ctx, product.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Price != nil {
		product.Price = input.Price.Round(2)
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.Category = nil
	if err := s.checkProduct(ctx, product); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, productWriteError(err, "update product")
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	deleted, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by order items")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), "product deleted")
	return nil
}

func (s *service) checkProduct(ctx context.Context, product *models.Product) error {
	fields := map[string]string{}
	if product.Name == "" {
		fields["name"] = "required"
	}
	if product.SKU == "" {
		fields["sku"] = "required"
	}
	if product.Price.IsNegative() {
		fields["price"] = "must be >= 0"
	}
	if product.Stock < 0 {
		fields["stock"] = "must be >= 0"
	}
	if len(fields) > 0 {
		return pkgerrors.Validation("invalid product", fields)
	}
	if product.CategoryID != nil {
		if _, err := s.repo.FindCategory(ctx, *product.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Validation("invalid product", map[string]string{"category_id": "category does not exist"})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
	}
	return nil
}

func (s *service) loadCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func categoryWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, "categories_slug_key") {
		return pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func productWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, "products_sku_key") {
		return pkgerrors.New(pkgerrors.CodeConflict, "product sku already exists")
	}
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Validation("invalid product", map[string]string{"category_id": "category does not exist"})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
