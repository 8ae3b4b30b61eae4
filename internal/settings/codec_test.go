package settings

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestDecodeByType(t *testing.T) {
	cases := []struct {
		name string
		typ  enums.SettingType
		raw  *string
		want any
	}{
		{name: "number", typ: enums.SettingTypeNumber, raw: strPtr("7.5"), want: 7.5},
		{name: "number padded", typ: enums.SettingTypeNumber, raw: strPtr(" 10 "), want: 10.0},
		{name: "boolean true", typ: enums.SettingTypeBoolean, raw: strPtr("true"), want: true},
		{name: "boolean one", typ: enums.SettingTypeBoolean, raw: strPtr("1"), want: true},
		{name: "boolean other", typ: enums.SettingTypeBoolean, raw: strPtr("yes"), want: false},
		{name: "string", typ: enums.SettingTypeString, raw: strPtr("My Store"), want: "My Store"},
		{name: "unknown type", typ: enums.SettingType("yaml"), raw: strPtr("a: b"), want: "a: b"},
		{name: "null", typ: enums.SettingTypeNumber, raw: nil, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(models.Setting{Key: "K", Type: tc.typ, Value: tc.raw})
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Decode() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	got, err := Decode(models.Setting{Key: "K", Type: enums.SettingTypeJSON, Value: strPtr(`{"a":[1,2]}`)})
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	doc, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", got)
	}
	if list, ok := doc["a"].([]any); !ok || len(list) != 2 {
		t.Fatalf("unexpected decoded document %#v", doc)
	}
}

func TestDecodeRejectsMalformedValues(t *testing.T) {
	for _, tc := range []struct {
		typ enums.SettingType
		raw string
	}{
		{typ: enums.SettingTypeNumber, raw: "abc"},
		{typ: enums.SettingTypeNumber, raw: "NaN"},
		{typ: enums.SettingTypeNumber, raw: ""},
		{typ: enums.SettingTypeJSON, raw: "{not json"},
	} {
		_, err := Decode(models.Setting{Key: "BROKEN", Type: tc.typ, Value: strPtr(tc.raw)})
		if !errors.Is(err, ErrParse) {
			t.Fatalf("expected ErrParse for %s %q, got %v", tc.typ, tc.raw, err)
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation code for %s %q", tc.typ, tc.raw)
		}
	}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		typ   enums.SettingType
		value any
		want  string
	}{
		{typ: enums.SettingTypeNumber, value: 7.5, want: "7.5"},
		{typ: enums.SettingTypeNumber, value: 12, want: "12"},
		{typ: enums.SettingTypeNumber, value: decimal.RequireFromString("5.00"), want: "5"},
		{typ: enums.SettingTypeBoolean, value: false, want: "false"},
		{typ: enums.SettingTypeString, value: "hello", want: "hello"},
		{typ: enums.SettingTypeJSON, value: map[string]any{"a": 1}, want: `{"a":1}`},
		{typ: enums.SettingTypeJSON, value: "quoted", want: `"quoted"`},
	}
	for _, tc := range cases {
		got, err := Encode(tc.typ, tc.value)
		if err != nil {
			t.Fatalf("Encode(%s, %#v) error: %v", tc.typ, tc.value, err)
		}
		if got == nil || *got != tc.want {
			t.Fatalf("Encode(%s, %#v) = %v, want %q", tc.typ, tc.value, got, tc.want)
		}
	}

	if got, err := Encode(enums.SettingTypeString, nil); err != nil || got != nil {
		t.Fatalf("Encode(nil) = %v, %v; want nil", got, err)
	}
}

func TestEncodeDecodeRoundTripNumber(t *testing.T) {
	encoded, err := Encode(enums.SettingTypeNumber, 50.25)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	got, err := Decode(models.Setting{Key: "FREE_SHIPPING_MINIMUM", Type: enums.SettingTypeNumber, Value: encoded})
	if err != nil || got != 50.25 {
		t.Fatalf("round trip = %#v, %v", got, err)
	}
}
