package models

// The aggregation helpers are pure functions over already-loaded rows,
// so they are tested without a database.

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func voucherOn(date time.Time, customerID, truckID, userID primitive.ObjectID) Voucher {
	return Voucher{
		ID:          primitive.NewObjectID(),
		Date:        date,
		Status:      VoucherStatusActive,
		CustomerID:  customerID,
		TruckID:     truckID,
		CreatedByID: userID,
	}
}

func TestMonthlyRevenueWindows(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	customer := primitive.NewObjectID()
	truck := primitive.NewObjectID()
	user := primitive.NewObjectID()

	inJune := voucherOn(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), customer, truck, user)
	inApril := voucherOn(time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), customer, truck, user)
	tooOld := voucherOn(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), customer, truck, user)

	revenue := map[primitive.ObjectID]decimal.Decimal{
		inJune.ID:  decimal.NewFromInt(5000),
		inApril.ID: decimal.NewFromInt(3000),
		tooOld.ID:  decimal.NewFromInt(99999),
	}

	months := monthlyRevenue(now, []Voucher{inJune, inApril, tooOld}, revenue)
	if len(months) != 5 {
		t.Fatalf("got %d months, want 5", len(months))
	}
	if months[0].Month != "Feb" || months[4].Month != "Jun" {
		t.Errorf("window = %s..%s, want Feb..Jun", months[0].Month, months[4].Month)
	}
	if months[4].Revenue != 5000 {
		t.Errorf("June revenue = %v, want 5000", months[4].Revenue)
	}
	if months[2].Revenue != 3000 {
		t.Errorf("April revenue = %v, want 3000", months[2].Revenue)
	}
	for _, m := range months {
		if m.Revenue == 99999 {
			t.Errorf("voucher outside the window leaked into %s", m.Month)
		}
	}
}

func TestTopCustomersKeepsThree(t *testing.T) {
	user := primitive.NewObjectID()
	truck := primitive.NewObjectID()

	names := map[primitive.ObjectID]string{}
	var vouchers []Voucher
	revenue := map[primitive.ObjectID]decimal.Decimal{}
	for i, tc := range []struct {
		name  string
		total int64
	}{
		{"Aung Trading", 9000},
		{"Shwe Co", 7000},
		{"Mya Co", 5000},
		{"Small Shop", 100},
	} {
		id := primitive.NewObjectID()
		names[id] = tc.name
		v := voucherOn(time.Date(2024, 6, i+1, 0, 0, 0, 0, time.UTC), id, truck, user)
		vouchers = append(vouchers, v)
		revenue[v.ID] = decimal.NewFromInt(tc.total)
	}

	top := topCustomers(vouchers, revenue, names)
	if len(top) != 3 {
		t.Fatalf("got %d customers, want 3", len(top))
	}
	if top[0].Name != "Aung Trading" || top[2].Name != "Mya Co" {
		t.Errorf("order = %v, want descending by revenue", top)
	}
	for _, c := range top {
		if c.Name == "Small Shop" {
			t.Error("fourth customer should have been cut")
		}
	}
}

func TestAverageOrderValueDividesPerVoucher(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	customer := primitive.NewObjectID()
	truck := primitive.NewObjectID()
	user := primitive.NewObjectID()

	a := voucherOn(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), customer, truck, user)
	b := voucherOn(time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), customer, truck, user)
	revenue := map[primitive.ObjectID]decimal.Decimal{
		a.ID: decimal.NewFromInt(4000),
		b.ID: decimal.NewFromInt(2000),
	}

	months := averageOrderValue(now, []Voucher{a, b}, revenue)
	if len(months) != 4 {
		t.Fatalf("got %d months, want 4", len(months))
	}
	june := months[3]
	if june.Month != "Jun" {
		t.Fatalf("last month = %s, want Jun", june.Month)
	}
	if june.Avg != 3000 {
		t.Errorf("June average = %v, want 3000", june.Avg)
	}
	if months[0].Avg != 0 {
		t.Errorf("empty month average = %v, want 0", months[0].Avg)
	}
}

func TestTopItemsFallbacksAndCut(t *testing.T) {
	top := topItems(map[string]int{
		"3ply":    40,
		"5ply":    30,
		"7ply":    20,
		"Unknown": 1,
	})
	if len(top) != 3 {
		t.Fatalf("got %d items, want 3", len(top))
	}
	if top[0].Item != "3ply" || top[0].Qty != 40 {
		t.Errorf("top item = %+v, want 3ply/40", top[0])
	}
}
