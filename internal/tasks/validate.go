package tasks

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sadopc/planboard/internal/plan"
)

const (
	MaxDescriptionLen = 200
	MaxResponsibleLen = 100
	MaxSectorLen      = 100
)

// Field names a form field that can carry a validation message.
type Field string

const (
	FieldDescription Field = "description"
	FieldResponsible Field = "responsible"
	FieldSector      Field = "sector"
	FieldStatus      Field = "status"
	FieldStartDate   Field = "startDate"
	FieldEndDate     Field = "endDate"
)

// ValidationError carries every failed rule, keyed by field.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[Field(k)]
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(f Field, msg string) {
	if prev, ok := e.Fields[f]; ok {
		msg = prev + "; " + msg
	}
	e.Fields[f] = msg
}

// Validate checks every rule on d against the action window and returns the
// trimmed draft, or a *ValidationError listing all failures.
func Validate(d Draft, bounds DateRange) (Draft, error) {
	out := Draft{
		Description: strings.TrimSpace(d.Description),
		Responsible: strings.TrimSpace(d.Responsible),
		Sector:      strings.TrimSpace(d.Sector),
		Status:      d.Status,
		StartDate:   strings.TrimSpace(d.StartDate),
		EndDate:     strings.TrimSpace(d.EndDate),
		FollowUp:    strings.TrimSpace(d.FollowUp),
	}
	if out.Status == "" {
		out.Status = SubNotStarted
	}

	verr := &ValidationError{Fields: make(map[Field]string)}
	checkText(verr, FieldDescription, out.Description, "description", MaxDescriptionLen)
	checkText(verr, FieldResponsible, out.Responsible, "responsible", MaxResponsibleLen)
	checkText(verr, FieldSector, out.Sector, "sector", MaxSectorLen)
	if !out.Status.Valid() {
		verr.add(FieldStatus, fmt.Sprintf("unknown status %q", out.Status))
	}

	start, startErr := plan.ParseDate(out.StartDate)
	if startErr != nil {
		verr.add(FieldStartDate, "start date must be YYYY-MM-DD")
	}
	end, endErr := plan.ParseDate(out.EndDate)
	if endErr != nil {
		verr.add(FieldEndDate, "end date must be YYYY-MM-DD")
	}

	if startErr == nil && bounds.Start != "" {
		if actionStart, err := plan.ParseDate(bounds.Start); err == nil && start.Before(actionStart) {
			verr.add(FieldStartDate, "start date must be on or after the action start ("+bounds.Start+")")
		}
	}
	if endErr == nil && bounds.End != "" {
		if actionEnd, err := plan.ParseDate(bounds.End); err == nil && end.After(actionEnd) {
			verr.add(FieldEndDate, "end date must be on or before the action end ("+bounds.End+")")
		}
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		verr.add(FieldEndDate, "end date must be on or after the start date")
	}

	if len(verr.Fields) > 0 {
		return out, verr
	}
	return out, nil
}

func checkText(verr *ValidationError, f Field, v, label string, limit int) {
	switch {
	case v == "":
		verr.add(f, label+" is required")
	case utf8.RuneCountInString(v) > limit:
		verr.add(f, fmt.Sprintf("%s must be at most %d characters", label, limit))
	}
}
