package types

const (
	ColRunDate                    = "runDate"
	ColTrainIdentity              = "trainIdentity"
	ColServiceUid                 = "serviceUid"
	ColAtocCode                   = "atocCode"
	ColAtocName                   = "atocName"
	ColDescription                = "description"
	ColGbttBookedDeparture        = "gbttBookedDeparture"
	ColGbttBookedDepartureNextDay = "gbttBookedDepartureNextDay"
	ColServiceType                = "serviceType"
	ColOriginTiploc               = "origin_tiploc"
	ColOriginDescription          = "origin_description"
	ColOriginWorkingTime          = "origin_workingTime"
	ColOriginPublicTime           = "origin_publicTime"
	ColDestinationTiploc          = "destination_tiploc"
	ColDestinationDescription     = "destination_description"
	ColDestinationWorkingTime     = "destination_workingTime"
	ColDestinationPublicTime      = "destination_publicTime"
	ColRealtimeArrival            = "realtimeArrival"
	ColRealtimeDeparture          = "realtimeDeparture"
	ColCancelReasonCode           = "cancelReasonCode"
	ColCancelReasonShortText      = "cancelReasonShortText"
	ColCancelReasonLongText       = "cancelReasonLongText"
	ColDisplayAs                  = "displayAs"

	ColDateAsDate            = "date-as-date"
	ColBookedTime            = "booked-time"
	ColRealtimeDepartureTime = "realtime-departure-time"
	ColTimeDifference        = "time-difference"
)

// TrainDataColumns is the column order of the traindata table and its CSV export.
var TrainDataColumns = []string{
	ColRunDate,
	ColTrainIdentity,
	ColServiceUid,
	ColAtocCode,
	ColAtocName,
	ColDescription,
	ColGbttBookedDeparture,
	ColGbttBookedDepartureNextDay,
	ColServiceType,
	ColOriginTiploc,
	ColOriginDescription,
	ColOriginWorkingTime,
	ColOriginPublicTime,
	ColDestinationTiploc,
	ColDestinationDescription,
	ColDestinationWorkingTime,
	ColDestinationPublicTime,
	ColRealtimeArrival,
	ColRealtimeDeparture,
	ColCancelReasonCode,
	ColCancelReasonShortText,
	ColCancelReasonLongText,
	ColDisplayAs,
}

var ReconciledColumns = []string{
	ColDateAsDate,
	ColBookedTime,
	ColRealtimeDepartureTime,
	ColTimeDifference,
}

// TrainData is one flattened service row. A nil field is a null carried over
// from the source document.
type TrainData struct {
	RunDate                    *string `json:"runDate"`
	TrainIdentity              *string `json:"trainIdentity"`
	ServiceUid                 *string `json:"serviceUid"`
	AtocCode                   *string `json:"atocCode"`
	AtocName                   *string `json:"atocName"`
	Description                *string `json:"description"`
	GbttBookedDeparture        *string `json:"gbttBookedDeparture"`
	GbttBookedDepartureNextDay *string `json:"gbttBookedDepartureNextDay"`
	ServiceType                *string `json:"serviceType"`
	OriginTiploc               *string `json:"origin_tiploc"`
	OriginDescription          *string `json:"origin_description"`
	OriginWorkingTime          *string `json:"origin_workingTime"`
	OriginPublicTime           *string `json:"origin_publicTime"`
	DestinationTiploc          *string `json:"destination_tiploc"`
	DestinationDescription     *string `json:"destination_description"`
	DestinationWorkingTime     *string `json:"destination_workingTime"`
	DestinationPublicTime      *string `json:"destination_publicTime"`
	RealtimeArrival            *string `json:"realtimeArrival"`
	RealtimeDeparture          *string `json:"realtimeDeparture"`
	CancelReasonCode           *string `json:"cancelReasonCode"`
	CancelReasonShortText      *string `json:"cancelReasonShortText"`
	CancelReasonLongText       *string `json:"cancelReasonLongText"`
	DisplayAs                  *string `json:"displayAs"`
}

// Fields returns pointers to every column in TrainDataColumns order.
func (t *TrainData) Fields() []**string {
	return []**string{
		&t.RunDate,
		&t.TrainIdentity,
		&t.ServiceUid,
		&t.AtocCode,
		&t.AtocName,
		&t.Description,
		&t.GbttBookedDeparture,
		&t.GbttBookedDepartureNextDay,
		&t.ServiceType,
		&t.OriginTiploc,
		&t.OriginDescription,
		&t.OriginWorkingTime,
		&t.OriginPublicTime,
		&t.DestinationTiploc,
		&t.DestinationDescription,
		&t.DestinationWorkingTime,
		&t.DestinationPublicTime,
		&t.RealtimeArrival,
		&t.RealtimeDeparture,
		&t.CancelReasonCode,
		&t.CancelReasonShortText,
		&t.CancelReasonLongText,
		&t.DisplayAs,
	}
}

// Values returns the column values in TrainDataColumns order.
func (t TrainData) Values() []*string {
	fields := t.Fields()
	values := make([]*string, len(fields))
	for i, f := range fields {
		values[i] = *f
	}
	return values
}

func (t *TrainData) SetOrigin(p LocationPoint) {
	t.OriginTiploc = p.Tiploc
	t.OriginDescription = p.Description
	t.OriginWorkingTime = p.WorkingTime
	t.OriginPublicTime = p.PublicTime
}

func (t *TrainData) SetDestination(p LocationPoint) {
	t.DestinationTiploc = p.Tiploc
	t.DestinationDescription = p.Description
	t.DestinationWorkingTime = p.WorkingTime
	t.DestinationPublicTime = p.PublicTime
}
