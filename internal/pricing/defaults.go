package pricing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/internal/settings"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/metrics"
)

// Schema defaults used when neither the caller nor settings supply a value.
var (
	DefaultTaxRate      = decimal.NewFromInt(10)
	DefaultShippingCost = decimal.RequireFromString("5.00")
)

// SettingsReader looks up typed setting values.
type SettingsReader interface {
	Lookup(ctx context.Context, key string) (any, bool, error)
}

// Draft holds the caller supplied pricing inputs of a new order. Nil means
// the caller left the field out.
type Draft struct {
	Subtotal     *decimal.Decimal
	TaxRate      *decimal.Decimal
	ShippingCost *decimal.Decimal
}

// Resolved is a Draft with every field filled in.
type Resolved struct {
	Subtotal     decimal.Decimal
	TaxRate      decimal.Decimal
	ShippingCost decimal.Decimal
	FreeShipping bool
}

// DeriverParams configure a Deriver.
type DeriverParams struct {
	Settings SettingsReader
	Logger   *logger.Logger
	Metrics  *metrics.OrderMetrics
	Now      func() time.Time
}

// Deriver fills creation-time defaults from settings and mints order numbers.
type Deriver struct {
	settings SettingsReader
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
	now      func() time.Time
}

// NewDeriver builds a Deriver.
func NewDeriver(params DeriverParams) (*Deriver, error) {
	if params.Settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Deriver{
		settings: params.Settings,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

// OrderNumber mints a fresh order number.
func (d *Deriver) OrderNumber(ctx context.Context) string {
	number := NewOrderNumber(d.now())
	d.logg.Info(d.logg.WithField(ctx, "order_number", number), "order number generated")
	return number
}

// ResolveDefaults fills the absent fields of draft. Subtotal defaults to 0.
// TaxRate comes from GLOBAL_TAX_RATE, else DefaultTaxRate. ShippingCost is 0
// when FREE_SHIPPING_MINIMUM exists and subtotal reaches it, else
// SHIPPING_COST, else DefaultShippingCost. A store error on either shipping
// lookup goes straight to DefaultShippingCost. Failures are logged and never
// fail the order.
func (d *Deriver) ResolveDefaults(ctx context.Context, draft Draft) Resolved {
	out := Resolved{Subtotal: decimal.Zero}
	if draft.Subtotal != nil {
		out.Subtotal = *draft.Subtotal
	}

	if draft.TaxRate != nil {
		out.TaxRate = *draft.TaxRate
	} else if rate, ok, _ := d.number(ctx, settings.KeyGlobalTaxRate); ok {
		out.TaxRate = rate
		d.logg.Info(d.logg.WithField(ctx, "tax_rate", rate.String()), "tax rate applied from settings")
	} else {
		out.TaxRate = DefaultTaxRate
	}

	if draft.ShippingCost != nil {
		out.ShippingCost = *draft.ShippingCost
		return out
	}

	minimum, ok, err := d.number(ctx, settings.KeyFreeShippingMinimum)
	if err != nil {
		out.ShippingCost = DefaultShippingCost
		return out
	}
	if ok && out.Subtotal.GreaterThanOrEqual(minimum) {
		out.ShippingCost = decimal.Zero
		out.FreeShipping = true
		d.metrics.IncFreeShipping()
		d.logg.Info(d.logg.WithFields(ctx, map[string]any{
			"subtotal":              out.Subtotal.String(),
			"free_shipping_minimum": minimum.String(),
		}), "free shipping applied")
		return out
	}

	if cost, ok, _ := d.number(ctx, settings.KeyShippingCost); ok {
		out.ShippingCost = cost
		d.logg.Info(d.logg.WithField(ctx, "shipping_cost", cost.String()), "shipping cost applied from settings")
		return out
	}

	out.ShippingCost = DefaultShippingCost
	return out
}

// number reads key as a decimal. Missing keys and values that are not
// numeric report false; a failed lookup also returns the error.
func (d *Deriver) number(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	logCtx := d.logg.WithField(ctx, "setting_key", key)

	value, found, err := d.settings.Lookup(ctx, key)
	if err != nil {
		d.metrics.IncFallback(key, metrics.FallbackLookupErr)
		d.logg.Warn(d.logg.WithField(logCtx, "error", err.Error()), "settings lookup failed; using fallback")
		return decimal.Zero, false, err
	}
	if !found {
		d.metrics.IncFallback(key, metrics.FallbackMissing)
		return decimal.Zero, false, nil
	}

	n, ok := toDecimal(value)
	if !ok {
		d.metrics.IncFallback(key, metrics.FallbackNotNumeric)
		d.logg.Warn(d.logg.WithField(logCtx, "value", value), "setting is not numeric; using fallback")
		return decimal.Zero, false, nil
	}
	return n, true, nil
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case decimal.Decimal:
		return v, true
	case string:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(v)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
