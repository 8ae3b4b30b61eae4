package enums

import "slices"

// SettingType selects how a stored setting value is decoded.
type SettingType string

const (
	SettingTypeString  SettingType = "string"
	SettingTypeNumber  SettingType = "number"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeJSON    SettingType = "json"
)

var settingTypes = []SettingType{SettingTypeString, SettingTypeNumber, SettingTypeBoolean, SettingTypeJSON}

func (t SettingType) String() string { return string(t) }

func (t SettingType) IsValid() bool { return slices.Contains(settingTypes, t) }

func ParseSettingType(value string) (SettingType, error) {
	return parse("setting type", value, settingTypes)
}
