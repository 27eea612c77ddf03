package models

import "time"

// Setting is a persisted key/value settings entry backing the shift windows.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Settings keys for the per-shift window boundaries. The timezone key is
// shared by both shifts; multi-campus timezones are out of scope.
const (
	SettingMorningCheckinStart  = "morning_checkin_start"
	SettingMorningCheckinEnd    = "morning_checkin_end"
	SettingMorningCheckoutStart = "morning_checkout_start"
	SettingMorningCheckoutEnd   = "morning_checkout_end"
	SettingMorningClassEnd      = "morning_class_end"
	SettingEveningCheckinStart  = "evening_checkin_start"
	SettingEveningCheckinEnd    = "evening_checkin_end"
	SettingEveningCheckoutStart = "evening_checkout_start"
	SettingEveningCheckoutEnd   = "evening_checkout_end"
	SettingEveningClassEnd      = "evening_class_end"
	SettingTimezone             = "attendance_timezone"
)

// WindowSettingKeys returns the boundary keys for a shift in the order
// checkin_start, checkin_end, checkout_start, checkout_end, class_end.
func WindowSettingKeys(shift Shift) []string {
	if shift == ShiftEvening {
		return []string{
			SettingEveningCheckinStart,
			SettingEveningCheckinEnd,
			SettingEveningCheckoutStart,
			SettingEveningCheckoutEnd,
			SettingEveningClassEnd,
		}
	}
	return []string{
		SettingMorningCheckinStart,
		SettingMorningCheckinEnd,
		SettingMorningCheckoutStart,
		SettingMorningCheckoutEnd,
		SettingMorningClassEnd,
	}
}

// DefaultWindowSettings seeds a fresh installation with the legacy timetable.
// Classification never falls back to these silently; they only prime the
// settings table.
func DefaultWindowSettings() map[string]string {
	return map[string]string{
		SettingMorningCheckinStart:  "09:00:00",
		SettingMorningCheckinEnd:    "11:00:00",
		SettingMorningCheckoutStart: "12:00:00",
		SettingMorningCheckoutEnd:   "13:40:00",
		SettingMorningClassEnd:      "13:40:00",
		SettingEveningCheckinStart:  "09:00:00",
		SettingEveningCheckinEnd:    "12:00:00",
		SettingEveningCheckoutStart: "12:00:00",
		SettingEveningCheckoutEnd:   "14:00:00",
		SettingEveningClassEnd:      "14:00:00",
		SettingTimezone:             "Asia/Karachi",
	}
}
