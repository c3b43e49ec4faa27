package table

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports a value that cannot be rendered as a SQL literal.
// Column is filled in by callers that know which column the value came from.
type FormatError struct {
	Column string
	Kind   Kind
	Value  string
}

func (e *FormatError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("cannot format %s value %q for column %s", e.Kind, e.Value, e.Column)
	}
	return fmt.Sprintf("cannot format %s value %q", e.Kind, e.Value)
}

// Literal renders a value as a SQL literal safe to embed in a staging
// statement. Table contents are operator-supplied free text, so quote
// escaping here is a correctness requirement, not a nicety.
func Literal(v Value) (string, error) {
	switch v.Kind {
	case KindNull:
		return "NULL", nil
	case KindString:
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'", nil
	case KindBool:
		if v.Bool {
			return "TRUE", nil
		}
		return "FALSE", nil
	case KindNumber:
		// Re-parse to guarantee the text is a plain decimal and nothing else.
		if _, err := strconv.ParseFloat(v.Num, 64); err != nil {
			return "", &FormatError{Kind: KindNumber, Value: v.Num}
		}
		return v.Num, nil
	case KindTime:
		return "'" + v.Time.UTC().Format(timeLayout) + "'", nil
	default:
		return "", &FormatError{Kind: v.Kind, Value: v.Display()}
	}
}
