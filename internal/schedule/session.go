package schedule

import (
	"encoding/json"
	"strconv"
)

// Record is one raw session as found in a source. Its keys are whatever the source used.
type Record map[string]any

// Canonical fields resolved through FieldAliases
const (
	FieldName     = "name"
	FieldStart    = "start"
	FieldEnd      = "end"
	FieldLocation = "location"
	FieldStatus   = "status"
	FieldDate     = "date"
)

// FieldAliases lists, per canonical field, the source keys to try in priority order.
// The first alias holding non-blank text wins. New source schemas are supported by adding
// aliases here.
var FieldAliases = map[string][]string{
	FieldName:     {"activity_name", "activityName", "name", "title", "description"},
	FieldStart:    {"start_time", "startTime", "start_date", "startDate", "time"},
	FieldEnd:      {"end_time", "endTime", "end_date", "endDate"},
	FieldLocation: {"location", "locationName", "location_name", "facility_name", "facilityName", "room"},
	FieldStatus:   {"status", "availability"},
	FieldDate:     {"date", "session_date", "start_date", "startDate", "activity_date", "day"},
}

// Field returns the normalized text of the first alias of field present in r
func (r Record) Field(field string) string {
	for _, key := range FieldAliases[field] {
		value, ok := r[key]
		if !ok {
			continue
		}
		if text := NormalizeText(scalarText(value)); text != "" {
			return text
		}
	}
	return ""
}

// scalarText stringifies scalar JSON values. Objects, arrays and null carry no text.
func scalarText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// NormalizeSession maps a raw record onto the canonical Session. It never fails: a record
// without any name alias yields an empty Name.
func NormalizeSession(r Record) Session {
	session := Session{
		Name:     r.Field(FieldName),
		Location: r.Field(FieldLocation),
		Status:   r.Field(FieldStatus),
	}

	start := r.Field(FieldStart)
	end := r.Field(FieldEnd)
	switch {
	case start != "" && end != "":
		session.Time = FormatClockTime(start) + " - " + FormatClockTime(end)
	case start != "":
		session.Time = FormatClockTime(start)
	}

	return session
}

// NormalizeSessions normalizes records in order
func NormalizeSessions(records []Record) []Session {
	sessions := make([]Session, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, NormalizeSession(r))
	}
	return sessions
}
