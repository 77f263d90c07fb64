package model

import (
	"fmt"
	"strings"
	"time"
)

// apiTimeLayout is the timestamp format used by the TrackingTime API.
const apiTimeLayout = "2006-01-02 15:04:05"

// APITime is a timestamp in the TrackingTime wire format.
type APITime struct {
	time.Time
}

// MarshalJSON implements json.Marshaler using the API's timestamp format.
func (t APITime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(apiTimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Empty and null values leave the
// zero time in place.
func (t *APITime) UnmarshalJSON(b []byte) error {
	value := strings.Trim(string(b), `"`)
	if value == "" || value == "null" {
		return nil
	}
	parsed, err := time.Parse(apiTimeLayout, value)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("malformed timestamp %q", value)}
	}
	t.Time = parsed
	return nil
}

// NoTaskID is the sentinel the API uses for events without an assigned task.
const NoTaskID = -1

// TimeEvent is one logged time span for a user against a customer.
// It is an immutable snapshot of the remote record.
type TimeEvent struct {
	ID         int64    `json:"id"`
	UserID     int64    `json:"user_id"`
	CustomerID int64    `json:"customer_id"`
	Project    string   `json:"project"`
	Task       *string  `json:"task"`
	TaskID     int64    `json:"task_id"`
	Start      APITime  `json:"start"`
	End        APITime  `json:"end"`
	HourlyRate *float64 `json:"hourly_rate"`
	IsBilled   bool     `json:"is_billed"`
}

// Duration returns the event's elapsed time. An end before the start is
// rejected with a ValidationError.
func (e TimeEvent) Duration() (time.Duration, error) {
	d := e.End.Sub(e.Start.Time)
	if d < 0 {
		return 0, &ValidationError{
			Reason: fmt.Sprintf("event %d ends before it starts (%s > %s)",
				e.ID, e.Start.Format(apiTimeLayout), e.End.Format(apiTimeLayout)),
		}
	}
	return d, nil
}

// Customer is a billable customer on the account.
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is an account member whose events are being billed.
type User struct {
	ID        int64 `json:"id"`
	AccountID int64 `json:"account_id"`
}

// ValidationError reports a payload or event that cannot be used:
// malformed timestamps, negative durations, unexpected response shapes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid data: " + e.Reason
}
