package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func activeTwoForOne(name string) *Promotion {
	now := time.Now()
	return &Promotion{
		ID:        uuid.New(),
		Name:      name,
		Type:      PromoTwoForOne,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		Active:    true,
	}
}

func group(product string, qty int, price float64) GroupedLine {
	return GroupedLine{
		Key:         product,
		ProductName: product,
		UnitPrice:   price,
		Quantity:    qty,
	}
}

func TestPriceTwoForOne(t *testing.T) {
	tests := []struct {
		name         string
		groups       []GroupedLine
		wantSubtotal float64
		wantDiscount float64
	}{
		{
			name:         "fiveUnitsDiscountsTwo",
			groups:       []GroupedLine{group("Burger", 5, 40)},
			wantSubtotal: 200,
			wantDiscount: 80,
		},
		{
			name:         "singleUnitNoDiscount",
			groups:       []GroupedLine{group("Burger", 1, 40)},
			wantSubtotal: 40,
			wantDiscount: 0,
		},
		{
			name:         "perGroupNotAcrossGroups",
			groups:       []GroupedLine{group("Burger", 1, 40), group("Beer", 1, 25)},
			wantSubtotal: 65,
			wantDiscount: 0,
		},
		{
			name:         "evenQuantityDiscountsHalf",
			groups:       []GroupedLine{group("Beer", 4, 25)},
			wantSubtotal: 100,
			wantDiscount: 50,
		},
	}

	promos := []*Promotion{activeTwoForOne("Happy Hour 2x1")}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Price(tt.groups, promos, nil, time.Now())
			if q.Subtotal != tt.wantSubtotal {
				t.Errorf("Price() subtotal = %v, want %v", q.Subtotal, tt.wantSubtotal)
			}
			if q.PromoDiscount != tt.wantDiscount {
				t.Errorf("Price() promo discount = %v, want %v", q.PromoDiscount, tt.wantDiscount)
			}
			if q.Total != tt.wantSubtotal-tt.wantDiscount {
				t.Errorf("Price() total = %v, want %v", q.Total, tt.wantSubtotal-tt.wantDiscount)
			}
		})
	}
}

func TestPriceExpiredPromotionIgnored(t *testing.T) {
	promo := activeTwoForOne("Old 2x1")
	promo.EndDate = time.Now().Add(-time.Hour)

	q := Price([]GroupedLine{group("Burger", 4, 40)}, []*Promotion{promo}, nil, time.Now())
	if q.PromoDiscount != 0 {
		t.Errorf("Price() promo discount = %v, want 0 for expired promotion", q.PromoDiscount)
	}
}

func TestPriceCoupons(t *testing.T) {
	tests := []struct {
		name       string
		groups     []GroupedLine
		coupon     *Coupon
		wantCoupon float64
		wantTotal  float64
	}{
		{
			name:       "fixedCouponSubtractsOutright",
			groups:     []GroupedLine{group("Burger", 2, 90)},
			coupon:     &Coupon{Code: "TAKE50", Type: CouponFixed, Value: 50, Active: true},
			wantCoupon: 50,
			wantTotal:  130,
		},
		{
			name:       "percentCouponOnFullSubtotal",
			groups:     []GroupedLine{group("Burger", 5, 40)},
			coupon:     &Coupon{Code: "SAVE15", Type: CouponPercentage, Value: 15, Active: true},
			wantCoupon: 30,
			wantTotal:  170,
		},
		{
			name:       "inactiveCouponIgnored",
			groups:     []GroupedLine{group("Burger", 2, 90)},
			coupon:     &Coupon{Code: "DEAD", Type: CouponFixed, Value: 50, Active: false},
			wantCoupon: 0,
			wantTotal:  180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Price(tt.groups, nil, tt.coupon, time.Now())
			if q.CouponDiscount != tt.wantCoupon {
				t.Errorf("Price() coupon discount = %v, want %v", q.CouponDiscount, tt.wantCoupon)
			}
			if q.Total != tt.wantTotal {
				t.Errorf("Price() total = %v, want %v", q.Total, tt.wantTotal)
			}
		})
	}
}

func TestPriceStacking(t *testing.T) {
	groups := []GroupedLine{
		group("Burger", 2, 40),
		group("Steak", 2, 110),
	}
	promos := []*Promotion{activeTwoForOne("2x1 Burgers")}
	coupon := &Coupon{Code: "SAVE10", Type: CouponPercentage, Value: 10, Active: true}

	q := Price(groups, promos, coupon, time.Now())
	if q.Subtotal != 300 {
		t.Fatalf("Price() subtotal = %v, want 300", q.Subtotal)
	}
	// 2x1 on each group: 1 free burger (40) + 1 free steak (110) = 150.
	if q.PromoDiscount != 150 {
		t.Errorf("Price() promo discount = %v, want 150", q.PromoDiscount)
	}
	// Percent coupon applies to the full subtotal, not the promo-reduced one.
	if q.CouponDiscount != 30 {
		t.Errorf("Price() coupon discount = %v, want 30", q.CouponDiscount)
	}
	if q.Total != 120 {
		t.Errorf("Price() total = %v, want 120", q.Total)
	}
	if len(q.Applied) != 3 {
		t.Errorf("Price() applied breakdown has %d entries, want 3", len(q.Applied))
	}
}

func TestPriceClampsAtZero(t *testing.T) {
	groups := []GroupedLine{group("Soda", 1, 20)}
	coupon := &Coupon{Code: "BIG", Type: CouponFixed, Value: 100, Active: true}

	q := Price(groups, nil, coupon, time.Now())
	if q.Total != 0 {
		t.Errorf("Price() total = %v, want 0 (never negative)", q.Total)
	}
}

func TestCouponRedeemable(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{name: "activeNoExpiry", coupon: Coupon{Active: true}, want: true},
		{name: "inactive", coupon: Coupon{Active: false}, want: false},
		{name: "expired", coupon: Coupon{Active: true, ExpiresAt: &past}, want: false},
		{name: "notYetExpired", coupon: Coupon{Active: true, ExpiresAt: &future}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.Redeemable(time.Now()); got != tt.want {
				t.Errorf("Redeemable() = %v, want %v", got, tt.want)
			}
		})
	}
}
