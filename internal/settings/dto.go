package settings

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// SettingDTO is the admin view of a setting row. Value holds the decoded
// form; ParseError is set instead when the stored text does not decode.
type SettingDTO struct {
	Key         string            `json:"key"`
	Value       any               `json:"value"`
	RawValue    *string           `json:"raw_value"`
	Type        enums.SettingType `json:"type"`
	Description *string           `json:"description,omitempty"`
	ParseError  string            `json:"parse_error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ListResult pairs the decoded key/value map with the underlying rows.
type ListResult struct {
	Values   map[string]any `json:"values"`
	Settings []SettingDTO   `json:"settings"`
}

// CreateSettingInput carries a new setting row.
type CreateSettingInput struct {
	Key         string            `json:"key" validate:"required,max=100"`
	Value       json.RawMessage   `json:"value"`
	Type        enums.SettingType `json:"type" validate:"required"`
	Description *string           `json:"description"`
}

// UpdateSettingInput changes the value and/or metadata of an existing key.
// The key itself is immutable.
type UpdateSettingInput struct {
	Value       json.RawMessage    `json:"value"`
	Type        *enums.SettingType `json:"type"`
	Description *string            `json:"description"`
}

// FromModel converts a row into its admin view.
func FromModel(s models.Setting) SettingDTO {
	dto := SettingDTO{
		Key:         s.Key,
		RawValue:    s.Value,
		Type:        s.Type,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	value, err := Decode(s)
	if err != nil {
		dto.ParseError = err.Error()
	} else {
		dto.Value = value
	}
	return dto
}

func decodeRaw(raw json.RawMessage) (any, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}
