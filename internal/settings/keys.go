package settings

// Well-known setting keys.
const (
	KeyGlobalTaxRate       = "GLOBAL_TAX_RATE"
	KeyShippingCost        = "SHIPPING_COST"
	KeyFreeShippingMinimum = "FREE_SHIPPING_MINIMUM"
	KeySiteName            = "SITE_NAME"
	KeyCurrencySymbol      = "CURRENCY_SYMBOL"
	KeyItemsPerPage        = "ITEMS_PER_PAGE"
	KeyEnableRegistration  = "ENABLE_REGISTRATION"
	KeyLowStockThreshold   = "LOW_STOCK_THRESHOLD"
)
