package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"carbe/internal/app/dto"
	searchapp "carbe/internal/app/handlers/search"
	"carbe/internal/app/queries"
)

type CatalogHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h CatalogHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("queries bus unavailable"))
		return
	}

	limit := parseIntWithDefault(c.Query("limit"), 24)
	page := parseIntWithDefault(c.Query("page"), 1)
	offset := parseInt(c.Query("offset"))
	if offset == 0 && page > 1 {
		offset = (page - 1) * limit
	}

	query := searchapp.CatalogQuery{
		Query:         strings.TrimSpace(c.Query("q")),
		City:          strings.TrimSpace(c.Query("city")),
		Transmissions: splitCSV(c.Query("transmission")),
		FuelTypes:     splitCSV(c.Query("fuel")),
		MinSeats:      parseInt(c.Query("seats")),
		PriceMinCents: parseInt64(c.Query("priceMin")),
		PriceMaxCents: parseInt64(c.Query("priceMax")),
		Sort:          strings.TrimSpace(c.Query("sort")),
		Limit:         limit,
		Offset:        offset,
	}
	result, err := queries.Ask[searchapp.CatalogQuery, dto.VehicleCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil {
		h.Logger.Error("catalog request failed", "status", status, "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}
