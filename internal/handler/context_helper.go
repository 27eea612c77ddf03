package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/shift-attendance-api/internal/middleware"
	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

func stationFromContext(c *gin.Context) *models.StationClaims {
	value, exists := c.Get(middleware.ContextStationKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.StationClaims)
	if !ok {
		return nil
	}
	return claims
}

func parseQueryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// parseDateParam reads a YYYY-MM-DD query value; empty means "not provided".
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}
	return &parsed, nil
}
