package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

type stubSettingsRepo struct {
	values   map[string]string
	upserted []models.Setting
	err      error
}

func (s *stubSettingsRepo) ListByKeys(ctx context.Context, keys []string) ([]models.Setting, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Setting
	for _, key := range keys {
		if value, ok := s.values[key]; ok {
			out = append(out, models.Setting{Key: key, Value: value})
		}
	}
	return out, nil
}

func (s *stubSettingsRepo) BulkUpsert(ctx context.Context, settings []models.Setting) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = append(s.upserted, settings...)
	return nil
}

func morningSettings() map[string]string {
	return map[string]string{
		models.SettingMorningCheckinStart:  "09:00:00",
		models.SettingMorningCheckinEnd:    "11:00:00",
		models.SettingMorningCheckoutStart: "12:00:00",
		models.SettingMorningCheckoutEnd:   "13:40:00",
		models.SettingMorningClassEnd:      "13:40:00",
		models.SettingTimezone:             "UTC",
	}
}

func TestWindowServiceWindowsFor(t *testing.T) {
	repo := &stubSettingsRepo{values: morningSettings()}
	svc := NewWindowService(repo, "UTC", nil)

	window, err := svc.WindowsFor(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.ShiftMorning, window.Shift)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), window.CheckinStart)
	assert.Equal(t, time.Date(2025, 3, 10, 13, 40, 0, 0, time.UTC), window.ClassEnd)
}

func TestWindowServiceWindowsForDateKeepsNamedDay(t *testing.T) {
	values := morningSettings()
	values[models.SettingTimezone] = "America/New_York"
	svc := NewWindowService(&stubSettingsRepo{values: values}, "UTC", nil)

	// UTC midnight of the named day is still the previous evening in New
	// York; the named-day path must not slide back a day.
	named := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	window, err := svc.WindowsForDate(context.Background(), models.ShiftMorning, named)
	require.NoError(t, err)
	assert.Equal(t, 10, window.Date.Day())
	assert.Equal(t, "America/New_York", window.Location.String())
}

func TestWindowServiceMissingBoundaryFails(t *testing.T) {
	values := morningSettings()
	delete(values, models.SettingMorningCheckoutEnd)
	svc := NewWindowService(&stubSettingsRepo{values: values}, "UTC", nil)

	_, err := svc.WindowsFor(context.Background(), models.ShiftMorning, time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErrors.FromError(err).Code)
}

func TestWindowServiceMisorderedBoundariesFail(t *testing.T) {
	values := morningSettings()
	values[models.SettingMorningCheckinEnd] = "08:00:00"
	svc := NewWindowService(&stubSettingsRepo{values: values}, "UTC", nil)

	_, err := svc.WindowsFor(context.Background(), models.ShiftMorning, time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErrors.FromError(err).Code)
}

func TestWindowServiceTimezoneFallback(t *testing.T) {
	values := morningSettings()
	delete(values, models.SettingTimezone)
	svc := NewWindowService(&stubSettingsRepo{values: values}, "UTC", nil)

	window, err := svc.WindowsFor(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "UTC", window.Location.String())
}

func TestWindowServiceUnknownShift(t *testing.T) {
	svc := NewWindowService(&stubSettingsRepo{values: morningSettings()}, "UTC", nil)

	_, err := svc.WindowsFor(context.Background(), models.Shift("Night"), time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErrors.FromError(err).Code)
}

func TestWindowServiceUpdateWindow(t *testing.T) {
	repo := &stubSettingsRepo{values: morningSettings()}
	svc := NewWindowService(repo, "UTC", nil)

	window := models.ShiftWindow{
		Shift:         models.ShiftEvening,
		CheckinStart:  mustTimeOfDay(t, "09:00:00"),
		CheckinEnd:    mustTimeOfDay(t, "12:00:00"),
		CheckoutStart: mustTimeOfDay(t, "12:00:00"),
		CheckoutEnd:   mustTimeOfDay(t, "14:00:00"),
		ClassEnd:      mustTimeOfDay(t, "14:00:00"),
	}
	require.NoError(t, svc.UpdateWindow(context.Background(), window, "admin-1"))
	require.Len(t, repo.upserted, 5)
	assert.Equal(t, models.SettingEveningCheckinStart, repo.upserted[0].Key)
	assert.Equal(t, "09:00:00", repo.upserted[0].Value)
}

func TestWindowServiceUpdateWindowRejectsBadOrdering(t *testing.T) {
	repo := &stubSettingsRepo{}
	svc := NewWindowService(repo, "UTC", nil)

	window := models.ShiftWindow{
		Shift:         models.ShiftMorning,
		CheckinStart:  mustTimeOfDay(t, "11:00:00"),
		CheckinEnd:    mustTimeOfDay(t, "09:00:00"),
		CheckoutStart: mustTimeOfDay(t, "12:00:00"),
		CheckoutEnd:   mustTimeOfDay(t, "13:00:00"),
		ClassEnd:      mustTimeOfDay(t, "13:40:00"),
	}
	err := svc.UpdateWindow(context.Background(), window, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserted)
}
