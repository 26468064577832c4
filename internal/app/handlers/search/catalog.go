package search

import (
	"context"
	"strconv"
	"strings"

	"carbe/internal/app/dto"
	"carbe/internal/app/handlers/support"
	"carbe/internal/app/queries"
	"carbe/internal/app/uow"
	domainvehicle "carbe/internal/domain/vehicle"
)

const catalogKey = "search.catalog"

// CatalogQuery searches the vehicle catalog. Free text goes through the
// classifier; structured filters are passed through as-is.
type CatalogQuery struct {
	Query         string
	City          string
	Transmissions []string
	FuelTypes     []string
	MinSeats      int
	PriceMinCents int64
	PriceMaxCents int64
	Sort          string
	Limit         int
	Offset        int
}

func (q CatalogQuery) Key() string { return catalogKey }

type CatalogHandler struct {
	UoWFactory uow.Factory
	Classifier Classifier
}

func (h *CatalogHandler) Handle(ctx context.Context, q CatalogQuery) (dto.VehicleCatalog, error) {
	var zero dto.VehicleCatalog
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainvehicle.SearchParams{
		City:          q.City,
		Query:         q.Query,
		Transmissions: q.Transmissions,
		FuelTypes:     q.FuelTypes,
		MinSeats:      q.MinSeats,
		PriceMinCents: q.PriceMinCents,
		PriceMaxCents: q.PriceMaxCents,
		Sort:          domainvehicle.CatalogSort(q.Sort),
		Limit:         q.Limit,
		Offset:        q.Offset,
	}

	classifier := h.Classifier
	if classifier == nil {
		classifier = HeuristicClassifier{}
	}
	if classifier.Classify(execCtx, q.Query) == KindComplex {
		params = interpretComplexQuery(q.Query, params)
	}

	params = params.Normalized()
	items, err := unit.Vehicles().Search(execCtx, params)
	if err != nil {
		return zero, err
	}
	return dto.MapVehicleCatalog(items, params.Limit, params.Offset), nil
}

var _ queries.Handler[CatalogQuery, dto.VehicleCatalog] = (*CatalogHandler)(nil)

// interpretComplexQuery lifts recognized constraint words out of the free
// text into structured filter fields. Whatever remains keeps matching
// make/model/city as plain text.
func interpretComplexQuery(raw string, params domainvehicle.SearchParams) domainvehicle.SearchParams {
	lowered := strings.ToLower(raw)

	for _, word := range []string{"automatic", "manual"} {
		if strings.Contains(lowered, word) {
			params.Transmissions = append(params.Transmissions, word)
			lowered = strings.ReplaceAll(lowered, word, " ")
		}
	}
	for _, word := range []string{"electric", "hybrid", "diesel", "petrol"} {
		if strings.Contains(lowered, word) {
			params.FuelTypes = append(params.FuelTypes, word)
			lowered = strings.ReplaceAll(lowered, word, " ")
		}
	}
	if m := seatPattern.FindStringSubmatch(lowered); len(m) > 1 {
		if seats, err := strconv.Atoi(m[1]); err == nil {
			params.MinSeats = seats
		}
		lowered = seatPattern.ReplaceAllString(lowered, " ")
	}
	if m := priceCapPattern.FindStringSubmatch(lowered); len(m) > 1 {
		if cap, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			params.PriceMaxCents = cap * 100
		}
		lowered = priceCapPattern.ReplaceAllString(lowered, " ")
	}

	params.Query = strings.Join(strings.Fields(lowered), " ")
	return params
}
