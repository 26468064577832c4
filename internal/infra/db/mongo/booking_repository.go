package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "carbe/internal/domain/booking"
	"carbe/internal/domain/shared/datekey"
	domainvehicle "carbe/internal/domain/vehicle"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

// OverlappingMonth matches every booking whose inclusive span touches the
// month. DateKeys sort lexicographically, so range comparisons work on the
// raw strings.
func (r *BookingRepository) OverlappingMonth(ctx context.Context, m datekey.Month, vehicles []domainvehicle.VehicleID) ([]*domainbooking.Booking, error) {
	ids := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, string(v))
	}
	filter := bson.M{
		"vehicle_id": bson.M{"$in": ids},
		"start":      bson.M{"$lte": string(m.Last())},
		"end":        bson.M{"$gte": string(m.First())},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID             string `bson:"_id"`
	VehicleID      string `bson:"vehicle_id"`
	GuestID        string `bson:"guest_id"`
	GuestName      string `bson:"guest_name"`
	Start          string `bson:"start"`
	End            string `bson:"end"`
	State          string `bson:"state"`
	DailyRateCents int64  `bson:"daily_rate_cents"`
	TotalCents     int64  `bson:"total_cents"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
	Version        int64  `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:             string(b.ID),
		VehicleID:      string(b.VehicleID),
		GuestID:        b.GuestID,
		GuestName:      b.GuestName,
		Start:          string(b.Start),
		End:            string(b.End),
		State:          string(b.State),
		DailyRateCents: b.DailyRateCents,
		TotalCents:     b.TotalCents,
		CreatedAt:      b.CreatedAt.UnixMilli(),
		UpdatedAt:      b.UpdatedAt.UnixMilli(),
		Version:        b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:             domainbooking.BookingID(d.ID),
		VehicleID:      domainvehicle.VehicleID(d.VehicleID),
		GuestID:        d.GuestID,
		GuestName:      d.GuestName,
		Start:          datekey.DateKey(d.Start),
		End:            datekey.DateKey(d.End),
		State:          domainbooking.State(d.State),
		DailyRateCents: d.DailyRateCents,
		TotalCents:     d.TotalCents,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
		Version:        d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
