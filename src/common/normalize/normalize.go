// Package normalize flattens a RealTimeTrains location search document into
// one TrainData row per service.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

// Placeholders written for keys missing from the source. Each column has its
// own placeholder and consumers match on the literal strings.
const (
	Empty      = ""
	None       = "None"
	NotPresent = "not-present"
)

// DecodeDocument parses a location search document. The data must already be
// well-formed JSON; a top level that is not an object is a shape error.
func DecodeDocument(data []byte) (types.RawObject, error) {
	doc, ok := object(data)
	if !ok {
		return nil, &InputShapeError{Path: "$", Reason: "document is not an object"}
	}
	return doc, nil
}

// LocationName returns location.name, used only for status reporting.
func LocationName(doc types.RawObject) string {
	var location types.SearchLocation
	if err := json.Unmarshal(doc["location"], &location); err != nil {
		return ""
	}
	return location.Name
}

// Normalize produces exactly one row per entry of doc.services, in input
// order. A missing services key or a service without locationDetail fails
// the whole run and no rows are returned.
func Normalize(doc types.RawObject) ([]types.TrainData, error) {
	rawServices, ok := doc["services"]
	if !ok {
		return nil, &InputShapeError{Path: "services", Reason: "key is missing"}
	}

	var services []json.RawMessage
	if isNull(rawServices) {
		return nil, &InputShapeError{Path: "services", Reason: "is null"}
	}
	if err := json.Unmarshal(rawServices, &services); err != nil {
		return nil, &InputShapeError{Path: "services", Reason: "is not an array"}
	}

	records := make([]types.TrainData, 0, len(services))
	for i, raw := range services {
		record, err := normalizeService(fmt.Sprintf("services[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func normalizeService(path string, raw json.RawMessage) (types.TrainData, error) {
	service, ok := object(raw)
	if !ok {
		return types.TrainData{}, &InputShapeError{Path: path, Reason: "service is not an object"}
	}

	rawDetail, ok := service["locationDetail"]
	if !ok {
		return types.TrainData{}, &InputShapeError{Path: path + ".locationDetail", Reason: "key is missing"}
	}
	detail, ok := object(rawDetail)
	if !ok {
		return types.TrainData{}, &InputShapeError{Path: path + ".locationDetail", Reason: "is not an object"}
	}

	record := types.TrainData{
		RunDate:       field(service, "runDate", Empty),
		TrainIdentity: field(service, "trainIdentity", Empty),
		ServiceUid:    field(service, "serviceUid", Empty),
		AtocCode:      field(service, "atocCode", Empty),
		AtocName:      field(service, "atocName", Empty),
		ServiceType:   field(service, "serviceType", Empty),

		Description:         field(detail, "description", Empty),
		GbttBookedDeparture: field(detail, "gbttBookedDeparture", Empty),

		GbttBookedDepartureNextDay: field(detail, "gbttBookedDepartureNextDay", None),
		RealtimeArrival:            field(detail, "realtimeArrival", None),
		RealtimeDeparture:          field(detail, "realtimeDeparture", None),

		CancelReasonCode:      field(detail, "cancelReasonCode", Empty),
		CancelReasonShortText: field(detail, "cancelReasonShortText", Empty),
		CancelReasonLongText:  field(detail, "cancelReasonLongText", Empty),
		DisplayAs:             field(detail, "displayAs", Empty),
	}

	record.SetOrigin(ExtractLocationPoint(detail["origin"]))
	record.SetDestination(ExtractLocationPoint(detail["destination"]))

	return record, nil
}

// field returns the value stored under key, or fallback when the key is absent.
func field(obj types.RawObject, key, fallback string) *string {
	raw, ok := obj[key]
	if !ok {
		return &fallback
	}
	return scalar(raw)
}

// scalar keeps strings as-is, nulls as nil and any other JSON value as its text.
func scalar(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		text := string(bytes.TrimSpace(raw))
		return &text
	}
	text := compact.String()
	return &text
}

func object(raw []byte) (types.RawObject, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var obj types.RawObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
