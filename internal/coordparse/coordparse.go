// Package coordparse normalizes the four supported coordinate input encodings
// into canonical signed decimal degrees. Every parse path funnels through
// Validate before a point is accepted.
package coordparse

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

var decimalPairRe = regexp.MustCompile(`^\s*([+-]?\d+(?:\.\d+)?)\s*,\s*([+-]?\d+(?:\.\d+)?)\s*$`)

// ParseDecimalPair parses free text of the form "lat, lon". Text that does not
// look like a coordinate pair at all yields ErrNotCoordinate so the caller can
// fall back to a name lookup instead of reporting a parse failure.
//
// Ordering heuristic: when the first number cannot be a latitude but the
// second can, the pair is read as (lon, lat). Near the equator both orders can
// be "in range"; the as-written order wins there, which can silently
// misread swapped input. Pinned by test rather than second-guessed.
func ParseDecimalPair(raw string) (models.CanonicalPoint, error) {
	m := decimalPairRe.FindStringSubmatch(raw)
	if m == nil {
		return models.CanonicalPoint{}, apperrors.ErrNotCoordinate
	}

	first, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return models.CanonicalPoint{}, apperrors.ParseError{Field: "latitude", Reason: "not a number"}
	}
	second, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return models.CanonicalPoint{}, apperrors.ParseError{Field: "longitude", Reason: "not a number"}
	}

	lat, lon := first, second
	if (first < MinLatitude || first > MaxLatitude) && second >= MinLatitude && second <= MaxLatitude {
		lat, lon = second, first
	}

	return Validate(lat, lon)
}

// ParseDecimalFields parses the two-field decimal encoding. Both fields are
// required; each is parsed independently.
func ParseDecimalFields(latField, lonField string) (models.CanonicalPoint, error) {
	latField = strings.TrimSpace(latField)
	lonField = strings.TrimSpace(lonField)
	if latField == "" {
		return models.CanonicalPoint{}, apperrors.ParseError{Field: "latitude", Reason: "required"}
	}
	if lonField == "" {
		return models.CanonicalPoint{}, apperrors.ParseError{Field: "longitude", Reason: "required"}
	}

	lat, err := strconv.ParseFloat(latField, 64)
	if err != nil {
		return models.CanonicalPoint{}, apperrors.ParseError{Field: "latitude", Reason: "not a number"}
	}
	lon, err := strconv.ParseFloat(lonField, 64)
	if err != nil {
		return models.CanonicalPoint{}, apperrors.ParseError{Field: "longitude", Reason: "not a number"}
	}

	return Validate(lat, lon)
}

// DMSFields is the six-box DMS encoding: deg/min/sec per axis, raw as typed.
// Degrees are required; blank minutes and seconds default to zero. The sign
// of the result follows the sign of the degrees field, there is no separate
// hemisphere flag.
type DMSFields struct {
	LatDegrees string `json:"lat_degrees"`
	LatMinutes string `json:"lat_minutes"`
	LatSeconds string `json:"lat_seconds"`
	LonDegrees string `json:"lon_degrees"`
	LonMinutes string `json:"lon_minutes"`
	LonSeconds string `json:"lon_seconds"`
}

// ParseDMSFields converts the six-box encoding to a canonical point.
func ParseDMSFields(f DMSFields) (models.CanonicalPoint, error) {
	lat, err := parseDMSAxis("latitude", f.LatDegrees, f.LatMinutes, f.LatSeconds)
	if err != nil {
		return models.CanonicalPoint{}, err
	}
	lon, err := parseDMSAxis("longitude", f.LonDegrees, f.LonMinutes, f.LonSeconds)
	if err != nil {
		return models.CanonicalPoint{}, err
	}
	return Validate(lat, lon)
}

func parseDMSAxis(axis, degField, minField, secField string) (float64, error) {
	degField = strings.TrimSpace(degField)
	if degField == "" {
		return 0, apperrors.ParseError{Field: axis + " degrees", Reason: "required"}
	}
	deg, err := strconv.ParseFloat(degField, 64)
	if err != nil {
		return 0, apperrors.ParseError{Field: axis + " degrees", Reason: "not a number"}
	}

	min, err := parseOptionalNumber(axis+" minutes", minField)
	if err != nil {
		return 0, err
	}
	sec, err := parseOptionalNumber(axis+" seconds", secField)
	if err != nil {
		return 0, err
	}
	if min < 0 || min >= 60 {
		return 0, apperrors.RangeError{Axis: axis + " minutes", Value: min, Min: 0, Max: 60}
	}
	if sec < 0 || sec >= 60 {
		return 0, apperrors.RangeError{Axis: axis + " seconds", Value: sec, Min: 0, Max: 60}
	}

	// "-0" degrees must still yield a southern/western value, so the sign
	// comes from the field text, not the parsed float.
	sign := 1.0
	if strings.HasPrefix(degField, "-") {
		sign = -1.0
	}
	if deg < 0 {
		deg = -deg
	}
	return sign * (deg + min/60 + sec/3600), nil
}

func parseOptionalNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.ParseError{Field: field, Reason: "not a number"}
	}
	return v, nil
}

// DetectInput classifies free text as one of the free-form coordinate
// encodings and parses it. Text that resembles neither a decimal pair nor a
// DMS string yields ErrNotCoordinate, the signal to treat it as a name query.
// Text that does look like a coordinate but fails to parse keeps its parse
// error; it never falls through to a name lookup.
func DetectInput(raw string) (models.CanonicalPoint, error) {
	if decimalPairRe.MatchString(raw) {
		return ParseDecimalPair(raw)
	}
	if len(dmsGroupRe.FindAllStringSubmatch(raw, 2)) >= 2 {
		return ParseDMSString(raw)
	}
	return models.CanonicalPoint{}, apperrors.ErrNotCoordinate
}

// dmsGroupRe matches one degrees-minutes-seconds-compass group. Degree, minute
// and second marks accept the ASCII and Unicode variants seen in pasted text.
var dmsGroupRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*[°º]\s*(?:(\d+(?:\.\d+)?)\s*(?:′|´|'|’)\s*)?(?:(\d+(?:\.\d+)?)\s*(?:″|"|''|´´|”)\s*)?([NSEWnsew])`)

// ParseDMSString scans free text for two DMS-with-compass groups, e.g.
// `20°44'19.7"S 164°47'41.6"E`. The first two groups in left-to-right order
// are taken as latitude then longitude; the string's positional order, not its
// compass letters, decides axis assignment. A negative degree token fixes the
// sign; otherwise S and W mean negative.
func ParseDMSString(raw string) (models.CanonicalPoint, error) {
	groups := dmsGroupRe.FindAllStringSubmatch(raw, 3)
	if len(groups) < 2 {
		return models.CanonicalPoint{}, apperrors.ParseError{Field: "coordinates", Reason: "expected two degree-minute-second groups"}
	}

	lat, err := dmsGroupValue(groups[0], "latitude")
	if err != nil {
		return models.CanonicalPoint{}, err
	}
	lon, err := dmsGroupValue(groups[1], "longitude")
	if err != nil {
		return models.CanonicalPoint{}, err
	}
	return Validate(lat, lon)
}

func dmsGroupValue(m []string, axis string) (float64, error) {
	deg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, apperrors.ParseError{Field: axis, Reason: "bad degrees"}
	}
	var min, sec float64
	if m[2] != "" {
		if min, err = strconv.ParseFloat(m[2], 64); err != nil {
			return 0, apperrors.ParseError{Field: axis, Reason: "bad minutes"}
		}
	}
	if m[3] != "" {
		if sec, err = strconv.ParseFloat(m[3], 64); err != nil {
			return 0, apperrors.ParseError{Field: axis, Reason: "bad seconds"}
		}
	}
	if min < 0 || min >= 60 {
		return 0, apperrors.RangeError{Axis: axis + " minutes", Value: min, Min: 0, Max: 60}
	}
	if sec < 0 || sec >= 60 {
		return 0, apperrors.RangeError{Axis: axis + " seconds", Value: sec, Min: 0, Max: 60}
	}

	negative := false
	if strings.HasPrefix(m[1], "-") {
		negative = true
		deg = -deg
	} else {
		switch strings.ToUpper(m[4]) {
		case "S", "W":
			negative = true
		}
	}

	v := deg + min/60 + sec/3600
	if negative {
		v = -v
	}
	return v, nil
}
