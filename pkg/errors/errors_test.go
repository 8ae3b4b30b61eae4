package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeFollowsWrapChain(t *testing.T) {
	inner := New(CodeValidation, "bad subtotal")
	outer := fmt.Errorf("create order: %w", inner)
	if !IsCode(outer, CodeValidation) {
		t.Fatalf("expected validation code through wrap chain")
	}
	if IsCode(outer, CodeNotFound) {
		t.Fatalf("unexpected not found match")
	}
	if IsCode(nil, CodeValidation) {
		t.Fatalf("nil error should not match")
	}
}

func TestValidationDetails(t *testing.T) {
	err := Validation("invalid order", map[string]string{"subtotal": "must be >= 0"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["subtotal"] != "must be >= 0" {
		t.Fatalf("unexpected details %#v", err.Details())
	}
	if Validation("no fields", nil).Details() != nil {
		t.Fatalf("expected nil details for empty field map")
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key", TableName: "orders"}
	err := Wrap(CodeValidation, pgErr, "duplicate order number")

	d := Dump(err)
	if d.Code != CodeValidation {
		t.Fatalf("expected validation code, got %s", d.Code)
	}
	if d.DB == nil || d.DB.Code != "23505" || d.DB.Constraint != "orders_order_number_key" || d.DB.Table != "orders" {
		t.Fatalf("unexpected db fields %+v", d.DB)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}
	if fields := d.Fields(); fields["db_constraint"] != "orders_order_number_key" {
		t.Fatalf("expected db fields in log fields, got %v", fields)
	}
}

func TestDumpWithoutDriverError(t *testing.T) {
	d := Dump(New(CodeDependency, "redis down"))
	if d.DB != nil {
		t.Fatalf("expected no db fields, got %+v", d.DB)
	}
	if !d.Retryable {
		t.Fatalf("dependency errors should be retryable")
	}
	if _, ok := d.Fields()["db_code"]; ok {
		t.Fatalf("db fields should be absent")
	}
}
