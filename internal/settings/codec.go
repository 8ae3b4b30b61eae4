package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
)

// ErrParse marks a stored value that does not decode under its declared type.
var ErrParse = errors.New("setting value does not match its type")

// Decode converts a stored row into its typed value: float64 for number,
// bool for boolean, the decoded document for json and the raw text
// otherwise. A NULL value decodes to nil.
func Decode(setting models.Setting) (any, error) {
	if setting.Value == nil {
		return nil, nil
	}
	raw := *setting.Value

	switch setting.Type {
	case enums.SettingTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, parseError(setting.Key, setting.Type, raw)
		}
		return n, nil
	case enums.SettingTypeBoolean:
		return raw == "true" || raw == "1", nil
	case enums.SettingTypeJSON:
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, parseError(setting.Key, setting.Type, raw)
		}
		return doc, nil
	default:
		return raw, nil
	}
}

// Encode serializes value for storage under typ: json values are encoded as
// a JSON document, everything else is coerced to its string form.
func Encode(typ enums.SettingType, value any) (*string, error) {
	if value == nil {
		return nil, nil
	}
	if typ == enums.SettingTypeJSON {
		b, err := json.Marshal(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "setting value is not json encodable")
		}
		encoded := string(b)
		return &encoded, nil
	}

	var encoded string
	switch v := value.(type) {
	case string:
		encoded = v
	case bool:
		encoded = strconv.FormatBool(v)
	case float64:
		encoded = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		encoded = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		encoded = strconv.Itoa(v)
	case int64:
		encoded = strconv.FormatInt(v, 10)
	case json.Number:
		encoded = v.String()
	case fmt.Stringer:
		encoded = v.String()
	default:
		encoded = fmt.Sprint(v)
	}
	return &encoded, nil
}

func parseError(key string, typ enums.SettingType, raw string) error {
	return pkgerrors.Wrap(
		pkgerrors.CodeValidation,
		fmt.Errorf("%w: %s=%q as %s", ErrParse, key, raw, typ),
		fmt.Sprintf("setting %s is not a valid %s", key, typ),
	)
}
