package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/shift-attendance-api/internal/models"
)

// AttendanceRepository is the durable ledger of one record per
// (student_id, date). Its insert and checkout operations are the
// authoritative duplicate guard; everything upstream (debounce, classifier)
// only trims latency and log noise.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// TryInsert atomically creates the first record for (student_id, date).
// Concurrent callers racing on the same key see exactly one true return; the
// rest get false with no error, which is a normal outcome, not a failure.
func (r *AttendanceRepository) TryInsert(ctx context.Context, rec *models.AttendanceRecord) (bool, error) {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	const query = `INSERT INTO attendance (id, student_id, student_name, program, shift, date, status, check_in_time, check_out_time, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (student_id, date) DO NOTHING
RETURNING id`
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query,
		rec.ID, rec.StudentID, rec.StudentName, rec.Program, rec.Shift, rec.Date,
		rec.Status, rec.CheckInTime, rec.CheckOutTime, rec.Notes, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("insert attendance: %w", err)
	}
	return true, nil
}

// TryUpdateCheckout is a compare-and-set on check_out_time: it succeeds only
// when a check-in is durably visible and no checkout has been written yet.
func (r *AttendanceRepository) TryUpdateCheckout(ctx context.Context, studentID string, date time.Time, checkout time.Time) (models.CheckoutResult, error) {
	const query = `UPDATE attendance
SET check_out_time = $3, updated_at = $4
WHERE student_id = $1 AND date = $2 AND check_in_time IS NOT NULL AND check_out_time IS NULL
RETURNING id`
	var updatedID string
	err := r.db.QueryRowxContext(ctx, query, studentID, date, checkout, time.Now().UTC()).Scan(&updatedID)
	if err == nil {
		return models.CheckoutUpdated, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("update checkout: %w", err)
	}

	// The guarded update matched nothing; inspect the row to say why.
	existing, err := r.GetForDate(ctx, studentID, date)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.CheckInTime != nil && existing.CheckOutTime != nil {
		return models.CheckoutAlreadyCheckedOut, nil
	}
	return models.CheckoutNoExistingCheckin, nil
}

// GetForDate returns the record for (student_id, date), or nil when none.
func (r *AttendanceRepository) GetForDate(ctx context.Context, studentID string, date time.Time) (*models.AttendanceRecord, error) {
	const query = `SELECT id, student_id, student_name, program, shift, date, status, check_in_time, check_out_time, notes, created_at, updated_at
FROM attendance WHERE student_id = $1 AND date = $2`
	var rec models.AttendanceRecord
	if err := r.db.GetContext(ctx, &rec, query, studentID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return &rec, nil
}

// ListStudentsWithoutRecord snapshots the active students of a shift with no
// record for the date. Students who gain a record after this read are
// protected by TryInsert's atomicity, not by this read being live.
func (r *AttendanceRepository) ListStudentsWithoutRecord(ctx context.Context, shift models.Shift, date time.Time) ([]models.Student, error) {
	const query = `SELECT s.id, s.student_id, s.name, s.program, s.shift, s.active, s.created_at, s.updated_at
FROM students s
WHERE s.shift = $1 AND s.active = TRUE
  AND NOT EXISTS (SELECT 1 FROM attendance a WHERE a.student_id = s.student_id AND a.date = $2)
ORDER BY s.student_id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, shift, date); err != nil {
		return nil, fmt.Errorf("list students without record: %w", err)
	}
	return students, nil
}

// ClosePartialDays relabels checked-in rows without a checkout to PartialDay
// once the shift's class has ended. Repeated runs match nothing.
func (r *AttendanceRepository) ClosePartialDays(ctx context.Context, shift models.Shift, date time.Time) (int64, error) {
	const query = `UPDATE attendance
SET status = $4, updated_at = $5
WHERE shift = $1 AND date = $2 AND status = $3 AND check_in_time IS NOT NULL AND check_out_time IS NULL`
	res, err := r.db.ExecContext(ctx, query, shift, date, models.AttendanceStatusPresent, models.AttendanceStatusPartialDay, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("close partial days: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("close partial days rows affected: %w", err)
	}
	return affected, nil
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Shift != "" {
		where = append(where, fmt.Sprintf("shift = $%d", len(args)+1))
		args = append(args, filter.Shift)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"date":          "date",
		"student_id":    "student_id",
		"status":        "status",
		"check_in_time": "check_in_time",
		"created_at":    "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, student_id, student_name, program, shift, date, status, check_in_time, check_out_time, notes, created_at, updated_at
FROM attendance WHERE %s
ORDER BY %s %s, student_id ASC
LIMIT %d OFFSET %d`, whereClause, sortColumn, order, size, offset)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// DailySummary aggregates status counts for one calendar day.
func (r *AttendanceRepository) DailySummary(ctx context.Context, date time.Time) (*models.DailySummary, error) {
	const query = `SELECT status, COUNT(*) AS cnt FROM attendance WHERE date = $1 GROUP BY status`
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("daily attendance summary: %w", err)
	}
	summary := &models.DailySummary{Date: date}
	for _, row := range rows {
		switch models.AttendanceStatus(row.Status) {
		case models.AttendanceStatusPresent:
			summary.Present += row.Count
		case models.AttendanceStatusAbsent:
			summary.Absent += row.Count
		case models.AttendanceStatusPartialDay:
			summary.PartialDay += row.Count
		}
		summary.Total += row.Count
	}
	if summary.Total > 0 {
		summary.PresentRate = float64(summary.Present+summary.PartialDay) / float64(summary.Total) * 100
	}
	return summary, nil
}
