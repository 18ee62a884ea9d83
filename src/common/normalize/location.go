package normalize

import (
	"encoding/json"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

// ExtractLocationPoint reads the four scalar fields of an origin or
// destination point. Keys missing from the point become "not-present"; an
// explicit null is kept as nil.
//
// The live API sends each point as a one-element array, so an array is read
// through its first element. Anything that is neither an object nor a
// non-empty array is treated as an empty point.
func ExtractLocationPoint(raw json.RawMessage) types.LocationPoint {
	point := pointObject(raw)

	return types.LocationPoint{
		Tiploc:      field(point, "tiploc", NotPresent),
		Description: field(point, "description", NotPresent),
		WorkingTime: field(point, "workingTime", NotPresent),
		PublicTime:  field(point, "publicTime", NotPresent),
	}
}

func pointObject(raw json.RawMessage) types.RawObject {
	if obj, ok := object(raw); ok {
		return obj
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		if obj, ok := object(list[0]); ok {
			return obj
		}
	}

	return types.RawObject{}
}
