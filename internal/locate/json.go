package locate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/vipteryx/centretracker/internal/schedule"
)

// Object is a decoded JSON object that remembers its key order, so a structural search visits
// properties in document order.
type Object struct {
	Keys   []string
	Values map[string]any
}

// Get returns the value stored under key
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// ParseJSON decodes data into []any, *Object, string, json.Number, bool or nil
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &Object{Values: make(map[string]any)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			if _, dup := obj.Values[key]; !dup {
				obj.Keys = append(obj.Keys, key)
			}
			obj.Values[key] = val
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil

	case '[':
		arr := make([]any, 0)
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// objectKeys returns the keys of a JSON object value in traversal order. Ordered objects keep
// document order; plain maps are visited in sorted order so results stay deterministic.
func objectKeys(v any) ([]string, bool) {
	var m map[string]any
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return nil, false
		}
		return val.Keys, true
	case map[string]any:
		m = val
	case schedule.Record:
		m = val
	default:
		return nil, false
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, true
}

func objectGet(v any, key string) (any, bool) {
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return nil, false
		}
		return val.Get(key)
	case map[string]any:
		x, ok := val[key]
		return x, ok
	case schedule.Record:
		x, ok := val[key]
		return x, ok
	}
	return nil, false
}

// toRecord converts an object value into a schedule.Record
func toRecord(v any) (schedule.Record, bool) {
	keys, ok := objectKeys(v)
	if !ok {
		return nil, false
	}
	r := make(schedule.Record, len(keys))
	for _, k := range keys {
		r[k], _ = objectGet(v, k)
	}
	return r, true
}

// toRecords converts a candidate array. Elements that are not objects carry no session and
// are dropped.
func toRecords(arr []any) []schedule.Record {
	records := make([]schedule.Record, 0, len(arr))
	for _, item := range arr {
		if r, ok := toRecord(item); ok {
			records = append(records, r)
		}
	}
	return records
}
