package types

import (
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ReconciledTrainData is a TrainData row with its derived punctuality columns.
// Each derived field is nil when it could not be computed.
type ReconciledTrainData struct {
	TrainData

	DateAsDate            *time.Time `json:"date-as-date"`
	BookedTime            *time.Time `json:"booked-time"`
	RealtimeDepartureTime *time.Time `json:"realtime-departure-time"`
	TimeDifference        *float64   `json:"time-difference"`
}

// DerivedValues renders the derived columns in ReconciledColumns order.
func (r ReconciledTrainData) DerivedValues() []*string {
	return []*string{
		formatTime(r.DateAsDate, DateLayout),
		formatTime(r.BookedTime, TimeLayout),
		formatTime(r.RealtimeDepartureTime, TimeLayout),
		FormatSeconds(r.TimeDifference),
	}
}

// FormatSeconds renders a time difference with one decimal place, e.g. "300.0".
func FormatSeconds(seconds *float64) *string {
	if seconds == nil {
		return nil
	}
	s := strconv.FormatFloat(*seconds, 'f', 1, 64)
	return &s
}

func formatTime(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}
	s := t.Format(layout)
	return &s
}
