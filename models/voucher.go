package models

import (
	"context"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VoucherStatus string

const (
	VoucherStatusActive  VoucherStatus = "ACTIVE"
	VoucherStatusDeleted VoucherStatus = "DELETED"
)

type Voucher struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VoucherNumber string             `bson:"voucher_number" json:"voucher_number"`
	Date          time.Time          `bson:"date" json:"date"`
	Status        VoucherStatus      `bson:"status" json:"status"`
	CustomerID    primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	TruckID       primitive.ObjectID `bson:"truck_id" json:"truck_id"`
	CreatedByID   primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

type VoucherDetail struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VoucherID      primitive.ObjectID `bson:"voucher_id" json:"voucher_id"`
	Particular     string             `bson:"particular" json:"particular"`
	ParticularNote string             `bson:"particular_note" json:"particular_note"`
	Ply            string             `bson:"ply" json:"ply"`
	Size           string             `bson:"size" json:"size"`
	UnitPrice      float64            `bson:"unit_price" json:"unit_price"`
	Qty            int                `bson:"qty" json:"qty"`
	Amount         float64            `bson:"amount" json:"amount"`
	Note           string             `bson:"note" json:"note"`
	Status         VoucherStatus      `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// VoucherWithRefs is a voucher joined with the names its references point
// to, the shape list/detail endpoints return.
type VoucherWithRefs struct {
	Voucher       `bson:",inline"`
	CustomerName  string          `json:"customer_name"`
	TruckName     string          `json:"truck_name"`
	CreatedByName string          `json:"created_by_name"`
	Details       []VoucherDetail `json:"details"`
}

type VoucherList struct {
	Data        []VoucherWithRefs `json:"data"`
	CurrentPage int               `json:"currentPage"`
	RowPerPage  int               `json:"rowPerPage"`
	TotalCount  int64             `json:"totalCount"`
	TotalPages  int               `json:"totalPages"`
}

func (s *Store) CreateVoucher(ctx context.Context, v *Voucher) error {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if v.Status == "" {
		v.Status = VoucherStatusActive
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	_, err := s.db.Collection(vouchersCollection).InsertOne(ctx, v)
	return translateWriteError(err)
}

func (s *Store) CreateVoucherDetail(ctx context.Context, d *VoucherDetail) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.Status == "" {
		d.Status = VoucherStatusActive
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := s.db.Collection(voucherDetailsCollection).InsertOne(ctx, d)
	return translateWriteError(err)
}

func (s *Store) CreateVoucherDetails(ctx context.Context, details []VoucherDetail) error {
	if len(details) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(details))
	now := time.Now()
	for i := range details {
		if details[i].ID.IsZero() {
			details[i].ID = primitive.NewObjectID()
		}
		if details[i].Status == "" {
			details[i].Status = VoucherStatusActive
		}
		if details[i].CreatedAt.IsZero() {
			details[i].CreatedAt = now
		}
		docs = append(docs, details[i])
	}
	_, err := s.db.Collection(voucherDetailsCollection).InsertMany(ctx, docs)
	return translateWriteError(err)
}

// VoucherPage returns one page of active vouchers, newest first. search
// matches the voucher number or a customer/truck name; startDate/endDate
// bound the voucher date when both are set.
func (s *Store) VoucherPage(ctx context.Context, page, rowPerPage int, search string, startDate, endDate *time.Time) (*VoucherList, error) {
	if page < 1 {
		page = 1
	}
	if rowPerPage < 1 {
		rowPerPage = 10
	}

	filter := bson.M{"status": VoucherStatusActive}

	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		customerIDs, err := s.idsByNameRegex(ctx, customersCollection, pattern)
		if err != nil {
			return nil, err
		}
		truckIDs, err := s.idsByNameRegex(ctx, trucksCollection, pattern)
		if err != nil {
			return nil, err
		}
		filter["$or"] = bson.A{
			bson.M{"voucher_number": pattern},
			bson.M{"customer_id": bson.M{"$in": customerIDs}},
			bson.M{"truck_id": bson.M{"$in": truckIDs}},
		}
	}

	if startDate != nil && endDate != nil {
		filter["date"] = bson.M{"$gte": *startDate, "$lte": *endDate}
	}

	col := s.db.Collection(vouchersCollection)
	totalCount, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	skip := int64((page - 1) * rowPerPage)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(rowPerPage))
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var vouchers []Voucher
	if err := cur.All(ctx, &vouchers); err != nil {
		return nil, err
	}

	joined, err := s.joinVoucherRefs(ctx, vouchers)
	if err != nil {
		return nil, err
	}

	return &VoucherList{
		Data:        joined,
		CurrentPage: page,
		RowPerPage:  rowPerPage,
		TotalCount:  totalCount,
		TotalPages:  int(math.Ceil(float64(totalCount) / float64(rowPerPage))),
	}, nil
}

func (s *Store) VoucherByID(ctx context.Context, id primitive.ObjectID) (*VoucherWithRefs, error) {
	var voucher Voucher
	err := s.db.Collection(vouchersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&voucher)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	joined, err := s.joinVoucherRefs(ctx, []Voucher{voucher})
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

func (s *Store) idsByNameRegex(ctx context.Context, collection string, pattern primitive.Regex) ([]primitive.ObjectID, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"name": pattern},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// joinVoucherRefs resolves customer/truck/user names and attaches detail
// rows for a page of vouchers using three $in reads instead of per-row
// round trips.
func (s *Store) joinVoucherRefs(ctx context.Context, vouchers []Voucher) ([]VoucherWithRefs, error) {
	if len(vouchers) == 0 {
		return []VoucherWithRefs{}, nil
	}

	voucherIDs := make([]primitive.ObjectID, 0, len(vouchers))
	customerIDs := make([]primitive.ObjectID, 0, len(vouchers))
	truckIDs := make([]primitive.ObjectID, 0, len(vouchers))
	userIDs := make([]primitive.ObjectID, 0, len(vouchers))
	for _, v := range vouchers {
		voucherIDs = append(voucherIDs, v.ID)
		customerIDs = append(customerIDs, v.CustomerID)
		truckIDs = append(truckIDs, v.TruckID)
		userIDs = append(userIDs, v.CreatedByID)
	}

	customerNames, err := s.namesByID(ctx, customersCollection, "name", customerIDs)
	if err != nil {
		return nil, err
	}
	truckNames, err := s.namesByID(ctx, trucksCollection, "name", truckIDs)
	if err != nil {
		return nil, err
	}
	userNames, err := s.namesByID(ctx, usersCollection, "name", userIDs)
	if err != nil {
		return nil, err
	}

	cur, err := s.db.Collection(voucherDetailsCollection).
		Find(ctx, bson.M{"voucher_id": bson.M{"$in": voucherIDs}})
	if err != nil {
		return nil, err
	}
	var details []VoucherDetail
	if err := cur.All(ctx, &details); err != nil {
		return nil, err
	}
	detailsByVoucher := make(map[primitive.ObjectID][]VoucherDetail, len(vouchers))
	for _, d := range details {
		detailsByVoucher[d.VoucherID] = append(detailsByVoucher[d.VoucherID], d)
	}

	joined := make([]VoucherWithRefs, 0, len(vouchers))
	for _, v := range vouchers {
		joined = append(joined, VoucherWithRefs{
			Voucher:       v,
			CustomerName:  customerNames[v.CustomerID],
			TruckName:     truckNames[v.TruckID],
			CreatedByName: userNames[v.CreatedByID],
			Details:       detailsByVoucher[v.ID],
		})
	}
	return joined, nil
}

func (s *Store) namesByID(ctx context.Context, collection, field string, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{field: 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	return names, nil
}
