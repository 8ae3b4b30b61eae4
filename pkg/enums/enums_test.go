package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	for _, raw := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		got, err := ParseOrderStatus(raw)
		if err != nil {
			t.Fatalf("ParseOrderStatus(%q) unexpected error: %v", raw, err)
		}
		if !got.IsValid() {
			t.Fatalf("expected %q to be valid", raw)
		}
	}
	if _, err := ParseOrderStatus("canceled"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !OrderStatusCancelled.IsTerminal() || OrderStatusShipped.IsTerminal() {
		t.Fatal("unexpected terminal classification")
	}
}

func TestParsePaymentStatus(t *testing.T) {
	if _, err := ParsePaymentStatus("refunded"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePaymentStatus("settled"); err == nil {
		t.Fatal("expected error for unknown payment status")
	}
}

func TestSettingTypeAndRole(t *testing.T) {
	if SettingType("yaml").IsValid() {
		t.Fatal("yaml should not be a valid setting type")
	}
	if got, err := ParseSettingType("json"); err != nil || got != SettingTypeJSON {
		t.Fatalf("ParseSettingType(json) = %v, %v", got, err)
	}
	if got, err := ParseUserRole("admin"); err != nil || got != UserRoleAdmin {
		t.Fatalf("ParseUserRole(admin) = %v, %v", got, err)
	}
	if UserRole("owner").IsValid() {
		t.Fatal("owner should not be a valid role")
	}
}

func TestPaymentStatusSettled(t *testing.T) {
	for status, want := range map[PaymentStatus]bool{
		PaymentStatusPending:  false,
		PaymentStatusFailed:   false,
		PaymentStatusPaid:     true,
		PaymentStatusRefunded: true,
	} {
		if status.IsSettled() != want {
			t.Fatalf("%s: IsSettled = %v", status, !want)
		}
	}
}

func TestParseErrorNamesKind(t *testing.T) {
	_, err := ParseUserRole("root")
	if err == nil || err.Error() != `invalid user role "root"` {
		t.Fatalf("unexpected error %v", err)
	}
}
