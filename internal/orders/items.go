package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/internal/pricing"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
)

// Item writes never touch the parent order; totals drift until
// reconciliation runs.

func (s *service) ListItems(ctx context.Context, orderID uuid.UUID) ([]OrderItemDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if _, err := s.loadOrder(ctx, s.repo, orderID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order items")
	}
	out := make([]OrderItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ItemFromModel(item))
	}
	return out, nil
}

func (s *service) CreateItem(ctx context.Context, orderID uuid.UUID, input CreateItemInput) (*OrderItemDTO, error) {
	fields := map[string]string{}
	if orderID == uuid.Nil {
		fields["order_id"] = "required"
	}
	if input.ProductID == uuid.Nil {
		fields["product_id"] = "required"
	}
	if input.Quantity < 1 {
		fields["quantity"] = "must be >= 1"
	}
	if input.Price != nil && input.Price.IsNegative() {
		fields["price"] = "must be >= 0"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid order item", fields)
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Validation("invalid order item", map[string]string{"product_id": "product does not exist"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	item := &models.OrderItem{
		OrderID:   orderID,
		ProductID: product.ID,
		Quantity:  input.Quantity,
		Price:     product.Price,
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	pricing.ApplyItemSubtotal(item)
	if err := checkStorable(pricing.ItemOverflow(item), "invalid order item"); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.loadOrder(ctx, repo, orderID); err != nil {
			return err
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			return writeError(err, "create order item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item.Product = product
	s.logItem(ctx, item, "order item created")
	dto := ItemFromModel(*item)
	return &dto, nil
}

func (s *service) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input UpdateItemInput) (*OrderItemDTO, error) {
	fields := map[string]string{}
	if orderID == uuid.Nil {
		fields["order_id"] = "required"
	}
	if itemID == uuid.Nil {
		fields["item_id"] = "required"
	}
	if input.Quantity != nil && *input.Quantity < 1 {
		fields["quantity"] = "must be >= 1"
	}
	if input.Price != nil && input.Price.IsNegative() {
		fields["price"] = "must be >= 0"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid order item", fields)
	}

	var saved *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, orderID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		changed := false
		if input.Quantity != nil && *input.Quantity != item.Quantity {
			item.Quantity = *input.Quantity
			changed = true
		}
		if input.Price != nil && !input.Price.Equal(item.Price) {
			item.Price = *input.Price
			changed = true
		}
		saved = item
		if !changed {
			return nil
		}

		pricing.ApplyItemSubtotal(item)
		if err := checkStorable(pricing.ItemOverflow(item), "invalid order item"); err != nil {
			return err
		}
		if err := repo.SaveItem(ctx, item); err != nil {
			return writeError(err, "update order item")
		}
		s.logItem(ctx, item, "order item updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := ItemFromModel(*saved)
	return &dto, nil
}

func (s *service) DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	if orderID == uuid.Nil || itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and item id required")
	}
	deleted, err := s.repo.DeleteItem(ctx, orderID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	s.logg.Info(s.logg.WithField(s.logg.WithOrderID(ctx, orderID.String()), "item_id", itemID.String()), "order item deleted")
	return nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) logItem(ctx context.Context, item *models.OrderItem, msg string) {
	ctx = s.logg.WithOrderID(ctx, item.OrderID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"item_id":  item.ID.String(),
		"quantity": item.Quantity,
		"price":    item.Price.StringFixed(2),
		"subtotal": item.Subtotal.StringFixed(2),
	}), msg)
}
