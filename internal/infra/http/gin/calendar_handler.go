package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"carbe/internal/app/commands"
	"carbe/internal/app/dto"
	calendarapp "carbe/internal/app/handlers/calendar"
	"carbe/internal/app/queries"
	domainbooking "carbe/internal/domain/booking"
	domaincalendar "carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	domainvehicle "carbe/internal/domain/vehicle"
)

type CalendarHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h CalendarHandler) Month(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Queries == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("queries bus unavailable"))
		return
	}

	query := calendarapp.GetMonthQuery{
		HostID:     principal.ID,
		Month:      c.Param("month"),
		VehicleIDs: splitCSV(c.Query("vehicles")),
	}
	result, err := queries.Ask[calendarapp.GetMonthQuery, dto.CalendarMonth](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setAvailabilityRequest struct {
	Dates      []string `json:"dates"`
	VehicleIDs []string `json:"vehicleIds"`
	Value      string   `json:"value"`
}

func (h CalendarHandler) SetAvailability(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}

	cmd := calendarapp.SetAvailabilityCommand{
		HostID:          principal.ID,
		Dates:           req.Dates,
		VehicleIDs:      req.VehicleIDs,
		Value:           req.Value,
		IdempotencyKeyV: idempotencyKey(c),
	}
	result, err := commands.Dispatch[calendarapp.SetAvailabilityCommand, *calendarapp.BulkWriteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setPricingRequest struct {
	Dates      []string         `json:"dates"`
	VehicleIDs []string         `json:"vehicleIds"`
	Price      priceSpecRequest `json:"price"`
}

type priceSpecRequest struct {
	Type        string  `json:"type"`
	AmountCents int64   `json:"amountCents"`
	Pct         float64 `json:"pct"`
}

func (h CalendarHandler) SetPricing(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	var req setPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}

	cmd := calendarapp.SetPricingCommand{
		HostID:     principal.ID,
		Dates:      req.Dates,
		VehicleIDs: req.VehicleIDs,
		Price: calendarapp.PriceSpec{
			Type:        req.Price.Type,
			AmountCents: req.Price.AmountCents,
			Pct:         req.Price.Pct,
		},
		IdempotencyKeyV: idempotencyKey(c),
	}
	result, err := commands.Dispatch[calendarapp.SetPricingCommand, *calendarapp.BulkWriteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaincalendar.ErrDateBooked):
		h.respondWithError(c, http.StatusConflict, err)
	case errors.Is(err, calendarapp.ErrVehicleNotOwned),
		errors.Is(err, domainvehicle.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, mongo.ErrNoDocuments):
		h.respondWithError(c, http.StatusNotFound, err)
	case isCalendarValidationError(err):
		h.respondWithError(c, http.StatusBadRequest, err)
	default:
		h.respondWithError(c, http.StatusInternalServerError, err)
	}
}

func (h CalendarHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if host, ok := currentPrincipal(c); ok {
			fields = append(fields, "host_id", host.ID)
		}
		h.Logger.Error("calendar request failed", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func isCalendarValidationError(err error) bool {
	switch {
	case errors.Is(err, calendarapp.ErrHostRequired),
		errors.Is(err, calendarapp.ErrInvalidPriceSpec),
		errors.Is(err, domaincalendar.ErrNoTargets),
		errors.Is(err, domaincalendar.ErrStatusNotSettable),
		errors.Is(err, domaincalendar.ErrInvalidPrice),
		errors.Is(err, datekey.ErrInvalidDateKey),
		errors.Is(err, datekey.ErrInvalidMonth):
		return true
	}
	return false
}

// idempotencyKey uses the caller-provided header so retries replay the stored
// outcome, falling back to a fresh key.
func idempotencyKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
		return key
	}
	return uuid.NewString()
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
