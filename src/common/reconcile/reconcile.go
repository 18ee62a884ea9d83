// Package reconcile derives the service date and departure punctuality
// columns for rows read back from the traindata table.
package reconcile

import (
	"time"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

const (
	runDateLayout   = "2006-01-02"
	departureLayout = "1504"

	nextDayFlag  = "1"
	noneSentinel = "None"
)

// Reconcile returns a new slice with one reconciled row per input row, in
// the same order. Each row is derived only from its own columns.
func Reconcile(rows []types.TrainData) []types.ReconciledTrainData {
	out := make([]types.ReconciledTrainData, len(rows))
	for i, row := range rows {
		out[i] = ReconcileRow(row)
	}
	return out
}

func ReconcileRow(row types.TrainData) types.ReconciledTrainData {
	booked := ParseBookedDeparture(row.GbttBookedDeparture)
	realtime := ParseRealtimeDeparture(row.RealtimeDeparture)

	return types.ReconciledTrainData{
		TrainData:             row,
		DateAsDate:            ServiceDate(row.RunDate, row.GbttBookedDepartureNextDay),
		BookedTime:            booked,
		RealtimeDepartureTime: realtime,
		TimeDifference:        TimeDifference(booked, realtime),
	}
}

// ServiceDate is the calendar day the departure happens on: runDate, moved
// forward one day when the next-day flag is exactly "1". It is nil when
// runDate is null or not a YYYY-MM-DD date.
func ServiceDate(runDate, nextDay *string) *time.Time {
	if runDate == nil {
		return nil
	}

	date, err := time.Parse(runDateLayout, *runDate)
	if err != nil {
		return nil
	}

	if nextDay != nil && *nextDay == nextDayFlag {
		date = date.AddDate(0, 0, 1)
	}
	return &date
}

// ParseBookedDeparture parses a four digit HHMM time. Anything else is nil.
func ParseBookedDeparture(value *string) *time.Time {
	if value == nil {
		return nil
	}
	return parseHHMM(*value)
}

// ParseRealtimeDeparture is ParseBookedDeparture with the "None" placeholder
// recognised up front.
func ParseRealtimeDeparture(value *string) *time.Time {
	if value == nil || *value == noneSentinel {
		return nil
	}
	return parseHHMM(*value)
}

// TimeDifference returns realtime minus booked in seconds, or nil if either
// is missing. Both values are times of day only, so a departure that slips
// past midnight comes out as a large negative number.
func TimeDifference(booked, realtime *time.Time) *float64 {
	if booked == nil || realtime == nil {
		return nil
	}

	seconds := realtime.Sub(*booked).Seconds()
	return &seconds
}

func parseHHMM(value string) *time.Time {
	if len(value) != 4 {
		return nil
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return nil
		}
	}

	t, err := time.Parse(departureLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
