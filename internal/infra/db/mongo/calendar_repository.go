package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincalendar "carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	domainvehicle "carbe/internal/domain/vehicle"
)

// CalendarRepository stores one document per (vehicle, date) pair: host flags
// in calendar_flags, absolute price overrides in price_overrides. Bulk edits
// become a single ordered BulkWrite of upserts.
type CalendarRepository struct {
	flags     *mongo.Collection
	overrides *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{
		flags:     db.Collection("calendar_flags"),
		overrides: db.Collection("price_overrides"),
	}
}

func (r *CalendarRepository) Flags(ctx context.Context, m datekey.Month, vehicles []domainvehicle.VehicleID) (map[domainvehicle.VehicleID]map[datekey.DateKey]domaincalendar.DayStatus, error) {
	out := make(map[domainvehicle.VehicleID]map[datekey.DateKey]domaincalendar.DayStatus, len(vehicles))
	cursor, err := r.flags.Find(ctx, monthFilter(m, vehicles))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc flagDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		v := domainvehicle.VehicleID(doc.VehicleID)
		days, ok := out[v]
		if !ok {
			days = make(map[datekey.DateKey]domaincalendar.DayStatus)
			out[v] = days
		}
		days[datekey.DateKey(doc.Date)] = domaincalendar.DayStatus(doc.Flag)
	}
	return out, cursor.Err()
}

func (r *CalendarRepository) Overrides(ctx context.Context, m datekey.Month, vehicles []domainvehicle.VehicleID) (map[domainvehicle.VehicleID]map[datekey.DateKey]int64, error) {
	out := make(map[domainvehicle.VehicleID]map[datekey.DateKey]int64, len(vehicles))
	cursor, err := r.overrides.Find(ctx, monthFilter(m, vehicles))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc overrideDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		v := domainvehicle.VehicleID(doc.VehicleID)
		days, ok := out[v]
		if !ok {
			days = make(map[datekey.DateKey]int64)
			out[v] = days
		}
		days[datekey.DateKey(doc.Date)] = doc.PriceCents
	}
	return out, cursor.Err()
}

func (r *CalendarRepository) SetFlags(ctx context.Context, dates []datekey.DateKey, vehicles []domainvehicle.VehicleID, flag domaincalendar.DayStatus) error {
	if !flag.Settable() {
		return domaincalendar.ErrStatusNotSettable
	}
	models := make([]mongo.WriteModel, 0, len(dates)*len(vehicles))
	for _, v := range vehicles {
		for _, d := range dates {
			doc := flagDocument{
				ID:        cellID(v, d),
				VehicleID: string(v),
				Date:      string(d),
				Flag:      string(flag),
			}
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": doc.ID}).
				SetUpdate(bson.M{"$set": doc}).
				SetUpsert(true))
		}
	}
	if len(models) == 0 {
		return nil
	}
	_, err := r.flags.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

func (r *CalendarRepository) SetOverrides(ctx context.Context, dates []datekey.DateKey, prices map[domainvehicle.VehicleID]int64) error {
	models := make([]mongo.WriteModel, 0, len(dates)*len(prices))
	for v, price := range prices {
		if price <= 0 {
			return domaincalendar.ErrInvalidPrice
		}
		for _, d := range dates {
			doc := overrideDocument{
				ID:         cellID(v, d),
				VehicleID:  string(v),
				Date:       string(d),
				PriceCents: price,
			}
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": doc.ID}).
				SetUpdate(bson.M{"$set": doc}).
				SetUpsert(true))
		}
	}
	if len(models) == 0 {
		return nil
	}
	_, err := r.overrides.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

func monthFilter(m datekey.Month, vehicles []domainvehicle.VehicleID) bson.M {
	ids := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, string(v))
	}
	return bson.M{
		"vehicle_id": bson.M{"$in": ids},
		"date": bson.M{
			"$gte": string(m.First()),
			"$lte": string(m.Last()),
		},
	}
}

func cellID(v domainvehicle.VehicleID, d datekey.DateKey) string {
	return string(v) + "|" + string(d)
}

type flagDocument struct {
	ID        string `bson:"_id"`
	VehicleID string `bson:"vehicle_id"`
	Date      string `bson:"date"`
	Flag      string `bson:"flag"`
}

type overrideDocument struct {
	ID         string `bson:"_id"`
	VehicleID  string `bson:"vehicle_id"`
	Date       string `bson:"date"`
	PriceCents int64  `bson:"price_cents"`
}
