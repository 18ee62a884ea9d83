package reconcile

import "github.com/jack-barr3tt/gbr-punctuality/src/common/types"

// Summary counts what a reconciliation run could and could not derive.
type Summary struct {
	Rows             int
	MissingDate      int
	MissingBooked    int
	MissingRealtime  int
	NextDay          int
	WithDifference   int
	LateDepartures   int
	EarlyDepartures  int
	OnTimeDepartures int
}

func Summarize(records []types.ReconciledTrainData) Summary {
	var s Summary
	s.Rows = len(records)

	for _, r := range records {
		if r.DateAsDate == nil {
			s.MissingDate++
		}
		if r.BookedTime == nil {
			s.MissingBooked++
		}
		if r.RealtimeDepartureTime == nil {
			s.MissingRealtime++
		}
		if r.GbttBookedDepartureNextDay != nil && *r.GbttBookedDepartureNextDay == nextDayFlag {
			s.NextDay++
		}

		if r.TimeDifference == nil {
			continue
		}
		s.WithDifference++
		switch {
		case *r.TimeDifference > 0:
			s.LateDepartures++
		case *r.TimeDifference < 0:
			s.EarlyDepartures++
		default:
			s.OnTimeDepartures++
		}
	}

	return s
}
