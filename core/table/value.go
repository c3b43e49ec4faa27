package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type tag of a cell value. Column shapes are unknown
// until runtime, so every value carries its own kind and all formatting and
// comparison logic dispatches on it.
type Kind int

const (
	// KindNull is the absence of a value.
	KindNull Kind = iota
	// KindString is free text.
	KindString
	// KindNumber is any numeric column (integer or decimal).
	KindNumber
	// KindBool is a boolean column.
	KindBool
	// KindTime is a timestamp/datetime column.
	KindTime
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged scalar cell. Numbers are kept as canonical decimal text
// rather than float64 so large integer keys survive a round trip unchanged.
type Value struct {
	Kind Kind
	Str  string    // KindString
	Num  string    // KindNumber, decimal text without grouping
	Bool bool      // KindBool
	Time time.Time // KindTime, UTC
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberText returns a numeric value from its decimal text form.
func NumberText(s string) Value { return Value{Kind: KindNumber, Num: s} }

// NumberInt returns a numeric value from an int64.
func NumberInt(i int64) Value { return Value{Kind: KindNumber, Num: strconv.FormatInt(i, 10)} }

// NumberFloat returns a numeric value from a float64.
func NumberFloat(f float64) Value {
	return Value{Kind: KindNumber, Num: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Time returns a timestamp value, normalized to UTC.
func Time(t time.Time) Value { return Value{Kind: KindTime, Time: t.UTC()} }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal reports whether two values carry the same kind and payload.
// Numeric comparison is textual after canonicalization, timestamps compare
// at second precision (the granularity of the warehouse literal).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return canonNumber(v.Num) == canonNumber(o.Num)
	case KindBool:
		return v.Bool == o.Bool
	case KindTime:
		return v.Time.Truncate(time.Second).Equal(o.Time.Truncate(time.Second))
	}
	return false
}

// Display returns the human-readable form of the value, used for key
// reporting in errors and CLI output.
func (v Value) Display() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTime:
		return v.Time.UTC().Format(timeLayout)
	}
	return ""
}

// MarshalJSON encodes the value by its natural JSON type: null, string,
// number, bool, or an ISO timestamp string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		if _, err := strconv.ParseFloat(v.Num, 64); err != nil {
			return nil, &FormatError{Kind: KindNumber, Value: v.Num}
		}
		return []byte(v.Num), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindTime:
		return json.Marshal(v.Time.UTC().Format(time.RFC3339))
	}
	return nil, &FormatError{Kind: v.Kind}
}

// timeLayout is the warehouse timestamp literal grammar.
const timeLayout = "2006-01-02 15:04:05"

// acceptedTimeLayouts are the input formats Coerce will parse.
var acceptedTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	timeLayout,
	"2006-01-02",
}

// Coerce converts a dynamically typed value (driver scan result or decoded
// JSON) into a Value of the given kind. nil always coerces to null.
func Coerce(raw any, kind Kind) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	switch kind {
	case KindString:
		switch x := raw.(type) {
		case string:
			return String(x), nil
		case []byte:
			return String(string(x)), nil
		}
		return String(fmt.Sprintf("%v", raw)), nil
	case KindNumber:
		switch x := raw.(type) {
		case int64:
			return NumberInt(x), nil
		case int:
			return NumberInt(int64(x)), nil
		case float64:
			return NumberFloat(x), nil
		case json.Number:
			return NumberText(x.String()), nil
		case []byte:
			return parseNumber(string(x))
		case string:
			return parseNumber(x)
		}
	case KindBool:
		switch x := raw.(type) {
		case bool:
			return Bool(x), nil
		case int64:
			return Bool(x != 0), nil
		case json.Number:
			return Bool(x.String() != "0"), nil
		case float64:
			return Bool(x != 0), nil
		case []byte:
			return parseBool(string(x))
		case string:
			return parseBool(x)
		}
	case KindTime:
		switch x := raw.(type) {
		case time.Time:
			return Time(x), nil
		case []byte:
			return parseTime(string(x))
		case string:
			return parseTime(x)
		}
	case KindNull:
		return Null(), nil
	}
	return Value{}, &FormatError{Kind: kind, Value: fmt.Sprintf("%v", raw)}
}

// Detect infers a Value from a dynamically typed scan result when the driver
// reports no column type. Unknown Go types degrade to their string form.
func Detect(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case int64:
		return NumberInt(x)
	case int:
		return NumberInt(int64(x))
	case float64:
		return NumberFloat(x)
	case bool:
		return Bool(x)
	case time.Time:
		return Time(x)
	default:
		return String(fmt.Sprintf("%v", raw))
	}
}

func parseNumber(s string) (Value, error) {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return Value{}, &FormatError{Kind: KindNumber, Value: s}
	}
	return NumberText(s), nil
}

func parseBool(s string) (Value, error) {
	switch strings.ToLower(s) {
	case "1", "true":
		return Bool(true), nil
	case "0", "false":
		return Bool(false), nil
	}
	return Value{}, &FormatError{Kind: KindBool, Value: s}
}

func parseTime(s string) (Value, error) {
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time(t), nil
		}
	}
	return Value{}, &FormatError{Kind: KindTime, Value: s}
}

func canonNumber(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
