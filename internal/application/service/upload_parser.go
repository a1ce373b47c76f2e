package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

// requiredColumns lists the header columns each upload type must provide.
var requiredColumns = map[constants.UploadType][]string{
	constants.UploadTypeAttendance:  {"student_id", "name", "present"},
	constants.UploadTypeExamResults: {"student_id", "name", "score"},
	constants.UploadTypeFeePayments: {"student_id", "name", "amount_due", "amount_paid", "due_date"},
}

// headerAliases maps common spreadsheet headings onto canonical column names.
var headerAliases = map[string]string{
	"id":           "student_id",
	"student":      "name",
	"student_name": "name",
	"class":        "class_name",
	"attended":     "present",
	"marks":        "score",
	"day":          "date",
	"due":          "amount_due",
	"paid":         "amount_paid",
}

// aggregate accumulates one student's rows.
type aggregate struct {
	name      string
	className string
	sum       float64
	count     int
	maxDays   int
}

// parseResult is what a metrics file reduces to.
type parseResult struct {
	updates      []repository.StudentUpdate
	observations []models.Observation
	processed    int
	skipped      int
}

// observedSignal maps the upload types that keep dated rows to their signal.
var observedSignal = map[constants.UploadType]models.Signal{
	constants.UploadTypeAttendance:  models.SignalAttendance,
	constants.UploadTypeExamResults: models.SignalExam,
}

// parseUpload reads a CSV file of the given type and reduces it to one
// StudentUpdate per student. Rows with missing or malformed values are
// skipped and counted; a missing required column rejects the whole file.
func parseUpload(uploadType constants.UploadType, r io.Reader, now time.Time) (*parseResult, error) {
	required, ok := requiredColumns[uploadType]
	if !ok {
		return nil, errors.Invalid("type", "must be one of: attendance exam_results fee_payments")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.Invalid("file", "is empty")
	}
	if err != nil {
		return nil, errors.Invalid("file", fmt.Sprintf("is not valid CSV: %v", err))
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := utils.NormalizeHeader(h)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []errors.FieldViolation
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, errors.FieldViolation{Field: col, Message: "column is required"})
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewValidationError(missing...).WithMetadata("type", string(uploadType))
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &parseResult{}
	byStudent := make(map[string]*aggregate)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.skipped++
				continue
			}
			return nil, errors.Invalid("file", fmt.Sprintf("could not be read: %v", err))
		}
		if isBlank(row) {
			continue
		}

		id := cell(row, "student_id")
		if id == "" {
			result.skipped++
			continue
		}

		value, ok := rowValue(uploadType, cell, row, now)
		if !ok {
			result.skipped++
			continue
		}

		// Attendance and exam rows are dated by their optional date column,
		// else by the upload day.
		signal, dated := observedSignal[uploadType]
		observedOn := startOfDay(now)
		if dated {
			if d := cell(row, "date"); d != "" {
				parsed, err := utils.ParseDate(d)
				if err != nil {
					result.skipped++
					continue
				}
				observedOn = startOfDay(parsed)
			}
			result.observations = append(result.observations, models.Observation{
				StudentID: id,
				Signal:    signal,
				Date:      observedOn,
				Value:     value,
			})
		}

		agg, exists := byStudent[id]
		if !exists {
			agg = &aggregate{}
			byStudent[id] = agg
		}
		if n := cell(row, "name"); n != "" {
			agg.name = n
		}
		if c := cell(row, "class_name"); c != "" {
			agg.className = c
		}
		if uploadType == constants.UploadTypeFeePayments {
			if int(value) > agg.maxDays {
				agg.maxDays = int(value)
			}
		} else {
			agg.sum += value
		}
		agg.count++
		result.processed++
	}

	ids := make([]string, 0, len(byStudent))
	for id := range byStudent {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		agg := byStudent[id]
		u := repository.StudentUpdate{StudentID: id, Name: agg.name}
		if agg.className != "" {
			className := agg.className
			u.ClassName = &className
		}
		switch uploadType {
		case constants.UploadTypeAttendance:
			pct := utils.Round(agg.sum/float64(agg.count)*100, 2)
			u.AttendancePct = &pct
		case constants.UploadTypeExamResults:
			avg := utils.Round(agg.sum/float64(agg.count), 2)
			u.AvgScore = &avg
		case constants.UploadTypeFeePayments:
			days := agg.maxDays
			u.FeeOverdueDays = &days
		}
		result.updates = append(result.updates, u)
	}
	return result, nil
}

// rowValue extracts the per-row measurement: presence (0/1), score, or days
// overdue for an underpaid invoice (0 when paid in full or not yet due).
func rowValue(uploadType constants.UploadType, cell func([]string, string) string, row []string, now time.Time) (float64, bool) {
	switch uploadType {
	case constants.UploadTypeAttendance:
		v, err := utils.ParsePresence(cell(row, "present"))
		return v, err == nil
	case constants.UploadTypeExamResults:
		v, err := utils.ParseFloat(cell(row, "score"))
		if err != nil || v < 0 || v > 100 {
			return 0, false
		}
		return v, true
	case constants.UploadTypeFeePayments:
		due, err := utils.ParseFloat(cell(row, "amount_due"))
		if err != nil || due < 0 {
			return 0, false
		}
		paid, err := utils.ParseFloat(cell(row, "amount_paid"))
		if err != nil || paid < 0 {
			return 0, false
		}
		dueDate, err := utils.ParseDate(cell(row, "due_date"))
		if err != nil {
			return 0, false
		}
		if paid >= due {
			return 0, true
		}
		return float64(utils.DaysBetween(dueDate, now)), true
	}
	return 0, false
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
