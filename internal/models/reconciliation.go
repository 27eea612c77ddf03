package models

import "time"

// ReconcileState describes where a reconciliation run sits relative to the
// shift's check-in window.
type ReconcileState string

const (
	ReconcileNotDue    ReconcileState = "NotDue"
	ReconcileDue       ReconcileState = "Due"
	ReconcileCompleted ReconcileState = "Completed"
)

// ReconcileError captures a per-student insert failure during a sweep.
type ReconcileError struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// ReconcileReport summarises one absence-reconciliation run. AlreadyPresent
// counts students whose record appeared between the snapshot read and the
// write; that is the race being won by a real check-in, not an error.
type ReconcileReport struct {
	Shift          Shift            `json:"shift"`
	Date           time.Time        `json:"date"`
	State          ReconcileState   `json:"state"`
	MarkedAbsent   int              `json:"marked_absent_count"`
	AlreadyPresent int              `json:"already_present_count"`
	ErrorCount     int              `json:"error_count"`
	Errors         []ReconcileError `json:"errors,omitempty"`
	RanAt          time.Time        `json:"ran_at"`
}
