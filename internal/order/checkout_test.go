package order

import (
	"testing"

	"github.com/google/uuid"
)

func TestChange(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		cash  float64
		want  float64
	}{
		{name: "overpaymentReturnsDifference", total: 87.50, cash: 90, want: 2.50},
		{name: "exactPaymentZeroChange", total: 87.50, cash: 87.50, want: 0},
		{name: "underpaymentNeverNegative", total: 87.50, cash: 80, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Change(tt.total, tt.cash); got != tt.want {
				t.Errorf("Change(%v, %v) = %v, want %v", tt.total, tt.cash, got, tt.want)
			}
		})
	}
}

func TestCanFinalize(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		cash  float64
		want  bool
	}{
		{name: "insufficientCashBlocks", total: 87.50, cash: 80, want: false},
		{name: "exactCashFinalizes", total: 87.50, cash: 87.50, want: true},
		{name: "overpaymentFinalizes", total: 87.50, cash: 90, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanFinalize(tt.total, tt.cash); got != tt.want {
				t.Errorf("CanFinalize(%v, %v) = %v, want %v", tt.total, tt.cash, got, tt.want)
			}
		})
	}
}

func TestNewPayment(t *testing.T) {
	orderID := uuid.New()
	p := NewPayment(orderID, 87.50, 90, "cashier-1")

	if p.ID == uuid.Nil {
		t.Error("NewPayment() should generate a non-nil UUID")
	}
	if p.OrderID != orderID {
		t.Errorf("NewPayment() OrderID = %v, want %v", p.OrderID, orderID)
	}
	if p.Method != PaymentMethodCash {
		t.Errorf("NewPayment() Method = %q, want %q", p.Method, PaymentMethodCash)
	}
	if p.Change != 2.50 {
		t.Errorf("NewPayment() Change = %v, want 2.50", p.Change)
	}
}
