package domain

import "strings"

// CityCode is a 3-letter uppercase code identifying a city.
type CityCode string

// Well-known city codes used in fixtures and docs. Any 3-letter code is legal.
const (
	CityPune      CityCode = "PUN"
	CityDelhi     CityCode = "DEL"
	CityMumbai    CityCode = "MUM"
	CityAllahabad CityCode = "ALL"
)

// NewCityCode validates and normalizes a raw city code to uppercase.
func NewCityCode(raw string) (CityCode, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) != 3 {
		return "", &ValidationError{Field: "city", Reason: "city code must be exactly 3 characters"}
	}
	return CityCode(strings.ToUpper(trimmed)), nil
}

func (c CityCode) String() string {
	return string(c)
}
