package types

import "encoding/json"

// RawObject is a JSON object whose members are kept undecoded, so that an
// absent key can be told apart from an explicit null.
type RawObject map[string]json.RawMessage

type SearchLocation struct {
	Name   string `json:"name"`
	Crs    string `json:"crs"`
	Tiploc string `json:"tiploc"`
}

type LocationPoint struct {
	Tiploc      *string `json:"tiploc"`
	Description *string `json:"description"`
	WorkingTime *string `json:"workingTime"`
	PublicTime  *string `json:"publicTime"`
}
