package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainvehicle "carbe/internal/domain/vehicle"
)

type VehicleRepository struct {
	col *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{col: db.Collection("agg_vehicle")}
}

func (r *VehicleRepository) ByID(ctx context.Context, id domainvehicle.VehicleID) (*domainvehicle.Vehicle, error) {
	var doc vehicleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvehicle.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VehicleRepository) ByIDs(ctx context.Context, ids []domainvehicle.VehicleID) ([]*domainvehicle.Vehicle, error) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": raw}})
	if err != nil {
		return nil, err
	}
	out, err := decodeVehicles(ctx, cursor)
	if err != nil {
		return nil, err
	}
	if len(out) != len(ids) {
		return nil, domainvehicle.ErrNotFound
	}
	return out, nil
}

func (r *VehicleRepository) ByHost(ctx context.Context, host domainvehicle.HostID) ([]*domainvehicle.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"host_id": string(host)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) Search(ctx context.Context, params domainvehicle.SearchParams) ([]*domainvehicle.Vehicle, error) {
	p := params.Normalized()
	filter := bson.M{}
	if p.Host != "" {
		filter["host_id"] = string(p.Host)
	}
	if p.City != "" {
		filter["city_lc"] = p.City
	}
	if len(p.Makes) > 0 {
		filter["make_lc"] = bson.M{"$in": p.Makes}
	}
	if len(p.Transmissions) > 0 {
		filter["transmission"] = bson.M{"$in": p.Transmissions}
	}
	if len(p.FuelTypes) > 0 {
		filter["fuel_type"] = bson.M{"$in": p.FuelTypes}
	}
	if p.MinSeats > 0 {
		filter["seats"] = bson.M{"$gte": p.MinSeats}
	}
	price := bson.M{}
	if p.PriceMinCents > 0 {
		price["$gte"] = p.PriceMinCents
	}
	if p.PriceMaxCents > 0 {
		price["$lte"] = p.PriceMaxCents
	}
	if len(price) > 0 {
		filter["base_price_cents"] = price
	}
	if p.Query != "" {
		filter["$text"] = bson.M{"$search": p.Query}
	}

	sort := bson.D{{Key: "base_price_cents", Value: 1}}
	switch p.Sort {
	case domainvehicle.SortByPriceDesc:
		sort = bson.D{{Key: "base_price_cents", Value: -1}}
	case domainvehicle.SortByNewest:
		sort = bson.D{{Key: "created_at", Value: -1}}
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) Save(ctx context.Context, v *domainvehicle.Vehicle) error {
	doc := newVehicleDocument(v)
	filter := bson.M{"_id": doc.ID, "version": v.Version}
	doc.Version = v.Version + 1
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
	v.Version = doc.Version
	return nil
}

func decodeVehicles(ctx context.Context, cursor *mongo.Cursor) ([]*domainvehicle.Vehicle, error) {
	defer cursor.Close(ctx)
	var out []*domainvehicle.Vehicle
	for cursor.Next(ctx) {
		var doc vehicleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type vehicleDocument struct {
	ID             string `bson:"_id"`
	HostID         string `bson:"host_id"`
	Make           string `bson:"make"`
	MakeLower      string `bson:"make_lc"`
	Model          string `bson:"model"`
	Year           int    `bson:"year"`
	Seats          int    `bson:"seats"`
	Transmission   string `bson:"transmission"`
	FuelType       string `bson:"fuel_type"`
	City           string `bson:"city"`
	CityLower      string `bson:"city_lc"`
	BasePriceCents int64  `bson:"base_price_cents"`
	PhotoURL       string `bson:"photo_url"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
	Version        int64  `bson:"version"`
}

func newVehicleDocument(v *domainvehicle.Vehicle) vehicleDocument {
	return vehicleDocument{
		ID:             string(v.ID),
		HostID:         string(v.Host),
		Make:           v.Make,
		MakeLower:      lower(v.Make),
		Model:          v.Model,
		Year:           v.Year,
		Seats:          v.Seats,
		Transmission:   lower(v.Transmission),
		FuelType:       lower(v.FuelType),
		City:           v.City,
		CityLower:      lower(v.City),
		BasePriceCents: v.BasePriceCents,
		PhotoURL:       v.PhotoURL,
		CreatedAt:      v.CreatedAt.UnixMilli(),
		UpdatedAt:      v.UpdatedAt.UnixMilli(),
		Version:        v.Version,
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (d vehicleDocument) toAggregate() *domainvehicle.Vehicle {
	return &domainvehicle.Vehicle{
		ID:             domainvehicle.VehicleID(d.ID),
		Host:           domainvehicle.HostID(d.HostID),
		Make:           d.Make,
		Model:          d.Model,
		Year:           d.Year,
		Seats:          d.Seats,
		Transmission:   d.Transmission,
		FuelType:       d.FuelType,
		City:           d.City,
		BasePriceCents: d.BasePriceCents,
		PhotoURL:       d.PhotoURL,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
		Version:        d.Version,
	}
}
