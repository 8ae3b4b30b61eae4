package seed

import (
	"github.com/angelmondragon/storeadmin-backend/internal/settings"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// DefaultSetting is one row written by the settings seed.
type DefaultSetting struct {
	Key         string
	Value       string
	Type        enums.SettingType
	Description string
}

// DefaultSettings are the settings every installation starts with.
var DefaultSettings = []DefaultSetting{
	{settings.KeyGlobalTaxRate, "10", enums.SettingTypeNumber, "Global tax rate percentage applied to all orders"},
	{settings.KeySiteName, "E-Commerce Admin", enums.SettingTypeString, "Name of the e-commerce site"},
	{settings.KeyCurrencySymbol, "$", enums.SettingTypeString, "Currency symbol for display"},
	{settings.KeyItemsPerPage, "20", enums.SettingTypeNumber, "Default number of items to display per page"},
	{settings.KeyEnableRegistration, "true", enums.SettingTypeBoolean, "Allow new user registrations"},
	{settings.KeyLowStockThreshold, "10", enums.SettingTypeNumber, "Threshold for low stock warnings"},
	{settings.KeyShippingCost, "5.00", enums.SettingTypeNumber, "Default shipping cost"},
	{settings.KeyFreeShippingMinimum, "50.00", enums.SettingTypeNumber, "Minimum order amount for free shipping"},
}
