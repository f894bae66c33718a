package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the value carries no time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseDate accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" and normalizes to UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// parseRangeEnd parses an inclusive upper bound. A date-only value covers the whole day.
func parseRangeEnd(s string) (time.Time, error) {
	t, err := parseDate(s)
	if err != nil {
		return t, err
	}
	if isDateOnly(strings.TrimSpace(s)) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// parseLimit reads the optional limit query value. Empty means unbounded (0).
func parseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q, expected a non-negative integer", s)
	}
	return n, nil
}

// parseUserID converts the path id. Anything that is not an ObjectID cannot name a user.
func parseUserID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindingErrorMessage turns gin binding errors into short client-facing messages.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "min":
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		default:
			return field + " is invalid"
		}
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return fmt.Sprintf("invalid number %q", numErr.Num)
	}
	return "invalid request body"
}
