package models

import (
	"fmt"
	"time"
)

// Shift identifies the cohort a student attends.
type Shift string

const (
	ShiftMorning Shift = "Morning"
	ShiftEvening Shift = "Evening"
)

// Valid returns true when the shift is a supported value.
func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening
}

// AllShifts lists every configured shift in scheduling order.
func AllShifts() []Shift {
	return []Shift{ShiftMorning, ShiftEvening}
}

// TimeOfDay is a wall-clock boundary expressed as seconds since midnight.
// Window comparisons run at second resolution.
type TimeOfDay int

// ParseTimeOfDay parses an HH:MM:SS boundary as stored in settings.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	var h, m, s int
	if _, err := fmt.Sscanf(raw, "%d:%d:%d", &h, &m, &s); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", raw, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, fmt.Errorf("time of day %q out of range", raw)
	}
	return TimeOfDay(h*3600 + m*60 + s), nil
}

// String renders the boundary back to HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)%3600/60, int(t)%60)
}

// At anchors the boundary on a calendar date in the given location.
func (t TimeOfDay) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/3600, int(t)%3600/60, int(t)%60, 0, loc)
}

// ShiftWindow holds the configured check-in/check-out boundaries for one
// shift. It is loaded once per classification or reconciliation cycle and
// treated as read-only for the duration of that cycle.
type ShiftWindow struct {
	Shift         Shift
	CheckinStart  TimeOfDay
	CheckinEnd    TimeOfDay
	CheckoutStart TimeOfDay
	CheckoutEnd   TimeOfDay
	ClassEnd      TimeOfDay
	Timezone      string
}

// Validate enforces the boundary ordering invariant:
// checkin_start < checkin_end <= checkout_start < checkout_end <= class_end.
// A window that fails here must abort the operation rather than fall back to
// a default, since a wrong window mismarks an entire shift.
func (w ShiftWindow) Validate() error {
	if !w.Shift.Valid() {
		return fmt.Errorf("unknown shift %q", w.Shift)
	}
	if w.CheckinStart >= w.CheckinEnd {
		return fmt.Errorf("%s shift: checkin_start %s must precede checkin_end %s", w.Shift, w.CheckinStart, w.CheckinEnd)
	}
	if w.CheckinEnd > w.CheckoutStart {
		return fmt.Errorf("%s shift: checkin_end %s must not pass checkout_start %s", w.Shift, w.CheckinEnd, w.CheckoutStart)
	}
	if w.CheckoutStart >= w.CheckoutEnd {
		return fmt.Errorf("%s shift: checkout_start %s must precede checkout_end %s", w.Shift, w.CheckoutStart, w.CheckoutEnd)
	}
	if w.ClassEnd < w.CheckoutEnd {
		return fmt.Errorf("%s shift: class_end %s must not precede checkout_end %s", w.Shift, w.ClassEnd, w.CheckoutEnd)
	}
	return nil
}

// Resolve anchors every boundary on the calendar day that the given instant
// falls on in the window's timezone. Midnight-crossing windows are not
// supported.
func (w ShiftWindow) Resolve(at time.Time) (*ResolvedWindow, error) {
	loc, err := w.location()
	if err != nil {
		return nil, err
	}
	return w.anchor(at.In(loc), loc), nil
}

// ResolveDate anchors every boundary on the calendar day named by date's
// year, month and day fields, ignoring the location those fields carry. Use
// it when the input is a named date rather than an instant, so a date parsed
// in UTC still lands on the same local day.
func (w ShiftWindow) ResolveDate(date time.Time) (*ResolvedWindow, error) {
	loc, err := w.location()
	if err != nil {
		return nil, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return w.anchor(day, loc), nil
}

func (w ShiftWindow) location() (*time.Location, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", w.Timezone, err)
	}
	return loc, nil
}

func (w ShiftWindow) anchor(day time.Time, loc *time.Location) *ResolvedWindow {
	return &ResolvedWindow{
		Shift:         w.Shift,
		Date:          time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc),
		CheckinStart:  w.CheckinStart.At(day, loc),
		CheckinEnd:    w.CheckinEnd.At(day, loc),
		CheckoutStart: w.CheckoutStart.At(day, loc),
		CheckoutEnd:   w.CheckoutEnd.At(day, loc),
		ClassEnd:      w.ClassEnd.At(day, loc),
		Location:      loc,
	}
}

// ResolvedWindow is a ShiftWindow anchored on a concrete day, ready for
// timestamp comparisons.
type ResolvedWindow struct {
	Shift         Shift          `json:"shift"`
	Date          time.Time      `json:"date"`
	CheckinStart  time.Time      `json:"checkin_start"`
	CheckinEnd    time.Time      `json:"checkin_end"`
	CheckoutStart time.Time      `json:"checkout_start"`
	CheckoutEnd   time.Time      `json:"checkout_end"`
	ClassEnd      time.Time      `json:"class_end"`
	Location      *time.Location `json:"-"`
}
