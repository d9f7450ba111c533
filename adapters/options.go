package adapters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Options is the configuration passed to Initialize. Each provider documents
// the keys it recognizes; unknown keys are rejected.
type Options map[string]any

// Merge returns a copy of o with the entries of other layered on top
func (o Options) Merge(other Options) Options {
	merged := make(Options, len(o)+len(other))
	for k, v := range o {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Has reports whether key is set to a non-nil value
func (o Options) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Unknown returns the keys of o that are not in known, sorted
func (o Options) Unknown(known ...string) []string {
	allowed := make(map[string]struct{}, len(known))
	for _, k := range known {
		allowed[k] = struct{}{}
	}
	var unknown []string
	for k := range o {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// String returns the string option or def when unset
func (o Options) String(key, def string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return "", optionTypeError(key, "string", v)
	}
}

// Bool returns the boolean option or def when unset
func (o Options) Bool(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, optionTypeError(key, "bool", v)
		}
		return b, nil
	default:
		return false, optionTypeError(key, "bool", v)
	}
}

// Int returns the integer option or def when unset
func (o Options) Int(key string, def int) (int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int32:
		return int(val), nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, optionTypeError(key, "int", v)
		}
		return int(val), nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, optionTypeError(key, "int", v)
		}
		return i, nil
	default:
		return 0, optionTypeError(key, "int", v)
	}
}

// Float returns the numeric option or def when unset
func (o Options) Float(key string, def float64) (float64, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, optionTypeError(key, "number", v)
	}
	return f, nil
}

// Duration returns the duration option or def when unset.
// Strings use time.ParseDuration; bare numbers are seconds.
func (o Options) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, optionTypeError(key, "duration", v)
		}
		return d, nil
	default:
		f, err := toFloat(v)
		if err != nil {
			return 0, optionTypeError(key, "duration", v)
		}
		return time.Duration(f * float64(time.Second)), nil
	}
}

// Strings returns a list option or def when unset.
// A single string is split on commas.
func (o Options) Strings(key string, def []string) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case []string:
		return val, nil
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, optionTypeError(key, "list of strings", v)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, optionTypeError(key, "list of strings", v)
	}
}

// FloatMap returns a map option with numeric values or def when unset
func (o Options) FloatMap(key string, def map[string]float64) (map[string]float64, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case map[string]float64:
		return val, nil
	case map[string]any:
		out := make(map[string]float64, len(val))
		for k, item := range val {
			f, err := toFloat(item)
			if err != nil {
				return nil, optionTypeError(key+"."+k, "number", item)
			}
			out[k] = f
		}
		return out, nil
	default:
		return nil, optionTypeError(key, "map of numbers", v)
	}
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		return strconv.ParseFloat(val, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func optionTypeError(key, want string, got any) error {
	return fmt.Errorf("option %q must be a %s, got %T", key, want, got)
}
