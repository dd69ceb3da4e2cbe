package models

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type UserVoucherCount struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

type CustomerRevenue struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

type TruckUsage struct {
	Truck string `json:"truck"`
	Count int    `json:"count"`
}

type MonthAverage struct {
	Month string  `json:"month"`
	Avg   float64 `json:"avg"`
}

type ItemQty struct {
	Item string `json:"item"`
	Qty  int    `json:"qty"`
}

type DashboardData struct {
	MonthlyRevenue     []MonthRevenue     `json:"monthlyRevenue"`
	VoucherCountByUser []UserVoucherCount `json:"voucherCountByUser"`
	TopCustomers       []CustomerRevenue  `json:"topCustomers"`
	TopTrucks          []TruckUsage       `json:"topTrucks"`
	AverageOrderValue  []MonthAverage     `json:"averageOrderValue"`
	TopItems           []ItemQty          `json:"topItems"`
}

// Dashboard builds the report page in memory from full collection reads.
// The voucher book is small (a few years of daily invoices), so this
// stays cheaper than five aggregation pipelines and keeps the revenue
// sums in decimal until the final float conversion.
func (s *Store) Dashboard(ctx context.Context) (*DashboardData, error) {
	now := time.Now()

	var vouchers []Voucher
	cur, err := s.db.Collection(vouchersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &vouchers); err != nil {
		return nil, err
	}

	var details []VoucherDetail
	cur, err = s.db.Collection(voucherDetailsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &details); err != nil {
		return nil, err
	}

	customers, err := s.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	trucks, err := s.ListTrucks(ctx)
	if err != nil {
		return nil, err
	}
	var users []User
	cur, err = s.db.Collection(usersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}

	customerNames := make(map[primitive.ObjectID]string, len(customers))
	for _, c := range customers {
		customerNames[c.ID] = c.Name
	}
	truckNames := make(map[primitive.ObjectID]string, len(trucks))
	for _, t := range trucks {
		truckNames[t.ID] = t.Name
	}
	userNames := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	revenueByVoucher := make(map[primitive.ObjectID]decimal.Decimal, len(vouchers))
	qtyByItem := make(map[string]int)
	for _, d := range details {
		amount := decimal.NewFromFloat(d.Amount)
		revenueByVoucher[d.VoucherID] = revenueByVoucher[d.VoucherID].Add(amount)

		key := d.Ply
		if key == "" {
			key = d.Particular
		}
		if key == "" {
			key = "Unknown"
		}
		qtyByItem[key] += d.Qty
	}

	data := &DashboardData{
		MonthlyRevenue:     monthlyRevenue(now, vouchers, revenueByVoucher),
		VoucherCountByUser: voucherCountByUser(vouchers, userNames),
		TopCustomers:       topCustomers(vouchers, revenueByVoucher, customerNames),
		TopTrucks:          topTrucks(vouchers, truckNames),
		AverageOrderValue:  averageOrderValue(now, vouchers, revenueByVoucher),
		TopItems:           topItems(qtyByItem),
	}
	return data, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthlyRevenue(now time.Time, vouchers []Voucher, revenue map[primitive.ObjectID]decimal.Decimal) []MonthRevenue {
	months := make([]MonthRevenue, 0, 5)
	for i := 4; i >= 0; i-- {
		start := monthStart(now).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		sum := decimal.Zero
		for _, v := range vouchers {
			if !v.Date.Before(start) && v.Date.Before(end) {
				sum = sum.Add(revenue[v.ID])
			}
		}
		months = append(months, MonthRevenue{
			Month:   start.Format("Jan"),
			Revenue: sum.InexactFloat64(),
		})
	}
	return months
}

func voucherCountByUser(vouchers []Voucher, userNames map[primitive.ObjectID]string) []UserVoucherCount {
	counts := make(map[primitive.ObjectID]int)
	for _, v := range vouchers {
		counts[v.CreatedByID]++
	}
	result := make([]UserVoucherCount, 0, len(counts))
	for id, count := range counts {
		name := userNames[id]
		if name == "" {
			name = "Unknown"
		}
		result = append(result, UserVoucherCount{User: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

func topCustomers(vouchers []Voucher, revenue map[primitive.ObjectID]decimal.Decimal, customerNames map[primitive.ObjectID]string) []CustomerRevenue {
	byCustomer := make(map[string]decimal.Decimal)
	for _, v := range vouchers {
		name := customerNames[v.CustomerID]
		if name == "" {
			continue
		}
		byCustomer[name] = byCustomer[name].Add(revenue[v.ID])
	}
	result := make([]CustomerRevenue, 0, len(byCustomer))
	for name, sum := range byCustomer {
		result = append(result, CustomerRevenue{Name: name, Revenue: sum.InexactFloat64()})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Revenue > result[j].Revenue })
	if len(result) > 3 {
		result = result[:3]
	}
	return result
}

func topTrucks(vouchers []Voucher, truckNames map[primitive.ObjectID]string) []TruckUsage {
	counts := make(map[string]int)
	for _, v := range vouchers {
		name := truckNames[v.TruckID]
		if name == "" {
			continue
		}
		counts[name]++
	}
	result := make([]TruckUsage, 0, len(counts))
	for name, count := range counts {
		result = append(result, TruckUsage{Truck: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	if len(result) > 3 {
		result = result[:3]
	}
	return result
}

func averageOrderValue(now time.Time, vouchers []Voucher, revenue map[primitive.ObjectID]decimal.Decimal) []MonthAverage {
	months := make([]MonthAverage, 0, 4)
	for i := 3; i >= 0; i-- {
		start := monthStart(now).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		sum := decimal.Zero
		count := 0
		for _, v := range vouchers {
			if !v.Date.Before(start) && v.Date.Before(end) {
				sum = sum.Add(revenue[v.ID])
				count++
			}
		}
		avg := 0.0
		if count > 0 {
			avg = sum.Div(decimal.NewFromInt(int64(count))).InexactFloat64()
		}
		months = append(months, MonthAverage{Month: start.Format("Jan"), Avg: avg})
	}
	return months
}

func topItems(qtyByItem map[string]int) []ItemQty {
	result := make([]ItemQty, 0, len(qtyByItem))
	for item, qty := range qtyByItem {
		result = append(result, ItemQty{Item: item, Qty: qty})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Qty > result[j].Qty })
	if len(result) > 3 {
		result = result[:3]
	}
	return result
}
