package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/internal/pricing"
	"github.com/angelmondragon/storeadmin-backend/pkg/db"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/metrics"
	"github.com/angelmondragon/storeadmin-backend/pkg/pagination"
)

var maxTaxRate = decimal.NewFromInt(100)

// Service defines the order and order item write paths. Every order write
// rederives tax and total; every item write that touches price or quantity
// rederives the item subtotal.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*pagination.Page[OrderDTO], error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context, orderID uuid.UUID) ([]OrderItemDTO, error)
	CreateItem(ctx context.Context, orderID uuid.UUID, input CreateItemInput) (*OrderItemDTO, error)
	UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input UpdateItemInput) (*OrderItemDTO, error)
	DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) error
}

type orderDeriver interface {
	ResolveDefaults(ctx context.Context, draft pricing.Draft) pricing.Resolved
	OrderNumber(ctx context.Context) string
}

// ServiceParams wire the orders service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Deriver  orderDeriver
	Products ProductReader
	Users    UserChecker
	Logger   *logger.Logger
	Metrics  *metrics.OrderMetrics
}

type service struct {
	repo     Repository
	tx       txRunner
	deriver  orderDeriver
	products ProductReader
	users    UserChecker
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Deriver == nil {
		return nil, fmt.Errorf("order deriver required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user checker required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		deriver:  params.Deriver,
		products: params.Products,
		users:    params.Users,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	fields := map[string]string{}
	if input.UserID == uuid.Nil {
		fields["user_id"] = "required"
	}
	address := strings.TrimSpace(input.ShippingAddress)
	if address == "" {
		fields["shipping_address"] = "required"
	}
	checkStatuses(fields, input.Status, input.PaymentStatus)
	checkPricing(fields, input.Subtotal, input.TaxRate, input.ShippingCost)
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid order", fields)
	}

	exists, err := s.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order owner")
	}
	if !exists {
		return nil, pkgerrors.Validation("invalid order", map[string]string{"user_id": "user does not exist"})
	}

	resolved := s.deriver.ResolveDefaults(ctx, pricing.Draft{
		Subtotal:     input.Subtotal,
		TaxRate:      input.TaxRate,
		ShippingCost: input.ShippingCost,
	})
	checkPricing(fields, &resolved.Subtotal, &resolved.TaxRate, &resolved.ShippingCost)
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid order defaults", fields)
	}

	order := &models.Order{
		OrderNumber:     strings.TrimSpace(input.OrderNumber),
		UserID:          input.UserID,
		Subtotal:        resolved.Subtotal,
		TaxRate:         resolved.TaxRate,
		ShippingCost:    resolved.ShippingCost,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		ShippingAddress: address,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
	}
	if input.Status != nil {
		order.Status = *input.Status
	}
	if input.PaymentStatus != nil {
		order.PaymentStatus = *input.PaymentStatus
	}
	if order.OrderNumber == "" {
		order.OrderNumber = s.deriver.OrderNumber(ctx)
	}
	pricing.ApplyTotals(order)
	if err := checkStorable(pricing.OrderOverflow(order), "invalid order"); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateOrder(ctx, order)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "orders_order_number_key") {
			return nil, pkgerrors.Validation("invalid order", map[string]string{"order_number": "already exists"})
		}
		return nil, writeError(err, "create order")
	}

	s.metrics.IncDerived("create")
	s.logTotals(ctx, order, "order created")
	return s.GetOrder(ctx, order.ID)
}

func (s *service) UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	fields := map[string]string{}
	if input.ShippingAddress != nil && strings.TrimSpace(*input.ShippingAddress) == "" {
		fields["shipping_address"] = "required"
	}
	checkStatuses(fields, input.Status, input.PaymentStatus)
	checkPricing(fields, input.Subtotal, input.TaxRate, input.ShippingCost)
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid order", fields)
	}

	var saved *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if input.Subtotal != nil {
			order.Subtotal = *input.Subtotal
		}
		if input.TaxRate != nil {
			order.TaxRate = *input.TaxRate
		}
		if input.ShippingCost != nil {
			order.ShippingCost = *input.ShippingCost
		}
		if input.Status != nil {
			order.Status = *input.Status
		}
		if input.PaymentStatus != nil {
			order.PaymentStatus = *input.PaymentStatus
		}
		if input.ShippingAddress != nil {
			order.ShippingAddress = strings.TrimSpace(*input.ShippingAddress)
		}
		if input.PaymentMethod != nil {
			order.PaymentMethod = input.PaymentMethod
		}
		if input.Notes != nil {
			order.Notes = input.Notes
		}
		pricing.ApplyTotals(order)
		if err := checkStorable(pricing.OrderOverflow(order), "invalid order"); err != nil {
			return err
		}

		if err := repo.SaveOrder(ctx, order); err != nil {
			return writeError(err, "update order")
		}
		saved = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncDerived("update")
	s.logTotals(ctx, saved, "order updated")
	return s.GetOrder(ctx, id)
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*pagination.Page[OrderDTO], error) {
	fields := map[string]string{}
	checkStatuses(fields, filters.Status, filters.PaymentStatus)
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid filters", fields)
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	page, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := &pagination.Page[OrderDTO]{Items: make([]OrderDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, order := range page.Items {
		out.Items = append(out.Items, FromModel(order))
	}
	return out, nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var deleted bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = s.repo.WithTx(tx).DeleteOrder(ctx, id)
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id.String()), "order deleted")
	return nil
}

func (s *service) logTotals(ctx context.Context, order *models.Order, msg string) {
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_number":  order.OrderNumber,
		"subtotal":      order.Subtotal.StringFixed(2),
		"tax_rate":      order.TaxRate.StringFixed(2),
		"tax_amount":    order.TaxAmount.StringFixed(2),
		"shipping_cost": order.ShippingCost.StringFixed(2),
		"total_amount":  order.TotalAmount.StringFixed(2),
	}), msg)
}

func checkStatuses(fields map[string]string, status *enums.OrderStatus, payment *enums.PaymentStatus) {
	if status != nil && !status.IsValid() {
		fields["status"] = "must be one of pending, processing, shipped, delivered, cancelled"
	}
	if payment != nil && !payment.IsValid() {
		fields["payment_status"] = "must be one of pending, paid, failed, refunded"
	}
}

func checkPricing(fields map[string]string, subtotal, taxRate, shippingCost *decimal.Decimal) {
	if subtotal != nil && subtotal.IsNegative() {
		fields["subtotal"] = "must be >= 0"
	}
	if taxRate != nil && (taxRate.IsNegative() || taxRate.GreaterThan(maxTaxRate)) {
		fields["tax_rate"] = "must be between 0 and 100"
	}
	if shippingCost != nil && shippingCost.IsNegative() {
		fields["shipping_cost"] = "must be >= 0"
	}
}

// checkStorable rejects money fields that would overflow their columns.
func checkStorable(overflow []string, message string) error {
	if len(overflow) == 0 {
		return nil
	}
	fields := make(map[string]string, len(overflow))
	for _, field := range overflow {
		fields[field] = "must not exceed " + pricing.MaxAmount.StringFixed(2)
	}
	return pkgerrors.Validation(message, fields)
}

// writeError maps a failed write onto its public code.
func writeError(err error, action string) error {
	if db.IsNumericOverflow(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount out of range")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
