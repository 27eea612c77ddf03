package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

type settingsRepository interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Setting, error)
	BulkUpsert(ctx context.Context, settings []models.Setting) error
}

// WindowService resolves the immutable per-cycle shift window snapshot from
// the settings store. A missing or mis-ordered boundary is a hard stop:
// dependents must refuse to classify or reconcile rather than guess.
type WindowService struct {
	settings   settingsRepository
	fallbackTZ string
	logger     *zap.Logger
}

// NewWindowService constructs the service. fallbackTZ is only consulted when
// the timezone setting itself is absent; window boundaries never fall back.
func NewWindowService(settings settingsRepository, fallbackTZ string, logger *zap.Logger) *WindowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowService{settings: settings, fallbackTZ: fallbackTZ, logger: logger}
}

// WindowsFor returns the shift's window anchored on the calendar day the
// given instant falls on in the configured timezone.
func (s *WindowService) WindowsFor(ctx context.Context, shift models.Shift, at time.Time) (*models.ResolvedWindow, error) {
	window, err := s.load(ctx, shift)
	if err != nil {
		return nil, err
	}
	resolved, err := window.Resolve(at)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "invalid shift window configuration")
	}
	return resolved, nil
}

// WindowsForDate returns the shift's window anchored on the named calendar
// day. Explicit dates arrive parsed in UTC; anchoring by the date's fields
// keeps an admin-supplied day on that day even when the configured timezone
// sits west of UTC.
func (s *WindowService) WindowsForDate(ctx context.Context, shift models.Shift, date time.Time) (*models.ResolvedWindow, error) {
	window, err := s.load(ctx, shift)
	if err != nil {
		return nil, err
	}
	resolved, err := window.ResolveDate(date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "invalid shift window configuration")
	}
	return resolved, nil
}

func (s *WindowService) load(ctx context.Context, shift models.Shift) (models.ShiftWindow, error) {
	if !shift.Valid() {
		return models.ShiftWindow{}, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("unknown shift %q", shift))
	}

	keys := models.WindowSettingKeys(shift)
	keys = append(keys, models.SettingTimezone)
	settings, err := s.settings.ListByKeys(ctx, keys)
	if err != nil {
		return models.ShiftWindow{}, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "load shift window settings")
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}

	boundaryKeys := models.WindowSettingKeys(shift)
	boundaries := make([]models.TimeOfDay, len(boundaryKeys))
	for i, key := range boundaryKeys {
		raw, ok := values[key]
		if !ok || raw == "" {
			return models.ShiftWindow{}, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("missing shift window setting %q", key))
		}
		boundary, err := models.ParseTimeOfDay(raw)
		if err != nil {
			return models.ShiftWindow{}, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, fmt.Sprintf("invalid shift window setting %q", key))
		}
		boundaries[i] = boundary
	}

	tz := values[models.SettingTimezone]
	if tz == "" {
		tz = s.fallbackTZ
	}

	return models.ShiftWindow{
		Shift:         shift,
		CheckinStart:  boundaries[0],
		CheckinEnd:    boundaries[1],
		CheckoutStart: boundaries[2],
		CheckoutEnd:   boundaries[3],
		ClassEnd:      boundaries[4],
		Timezone:      tz,
	}, nil
}

// UpdateWindow validates and persists a shift's boundaries as one
// transaction. The ordering invariant is enforced before anything is
// written, so a bad update never reaches the classifier.
func (s *WindowService) UpdateWindow(ctx context.Context, window models.ShiftWindow, updatedBy string) error {
	if err := window.Validate(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift window")
	}
	if window.Timezone != "" {
		if _, err := time.LoadLocation(window.Timezone); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timezone")
		}
	}

	keys := models.WindowSettingKeys(window.Shift)
	values := []models.TimeOfDay{
		window.CheckinStart,
		window.CheckinEnd,
		window.CheckoutStart,
		window.CheckoutEnd,
		window.ClassEnd,
	}

	var by *string
	if updatedBy != "" {
		by = &updatedBy
	}
	settings := make([]models.Setting, 0, len(keys)+1)
	for i, key := range keys {
		settings = append(settings, models.Setting{Key: key, Value: values[i].String(), UpdatedBy: by})
	}
	if window.Timezone != "" {
		settings = append(settings, models.Setting{Key: models.SettingTimezone, Value: window.Timezone, UpdatedBy: by})
	}

	if err := s.settings.BulkUpsert(ctx, settings); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "persist shift window settings")
	}
	s.logger.Info("shift window updated",
		zap.String("shift", string(window.Shift)),
		zap.String("updated_by", updatedBy))
	return nil
}
