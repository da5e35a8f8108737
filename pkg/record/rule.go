// pkg/record/rule.go
package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the declared type of a record field
type Kind int

const (
	// KindString is compared case-insensitively and written verbatim
	KindString Kind = iota
	// KindInt is compared and written as a plain integer
	KindInt
	// KindFloat is compared and written at a fixed number of decimal places
	KindFloat
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Rule is the comparison rule of a field. The same rule is applied to the
// in-memory value and to the value read back from the database.
type Rule struct {
	Kind      Kind
	Precision int // decimal places, floats only
}

// Format renders v in the canonical form used for comparison
func (r Rule) Format(v interface{}) (string, error) {
	switch r.Kind {
	case KindString:
		return strings.ToLower(toString(v)), nil
	case KindInt:
		i, err := toInt(v)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(i, 10), nil
	case KindFloat:
		f, err := toFloat(v)
		if err != nil {
			return "", err
		}
		return formatFixed(f, r.Precision), nil
	default:
		return "", fmt.Errorf("unsupported kind %s", r.Kind)
	}
}

// Equal reports whether a and b have the same canonical form. Values that
// cannot be normalized never compare equal.
func (r Rule) Equal(a, b interface{}) bool {
	fa, err := r.Format(a)
	if err != nil {
		return false
	}
	fb, err := r.Format(b)
	if err != nil {
		return false
	}
	return fa == fb
}

// Literal renders v the way it is passed to the write endpoint: strings
// verbatim inside single quotes, ints with %d, floats with a fixed number
// of decimal places. No escaping is performed.
func (r Rule) Literal(v interface{}) (string, error) {
	switch r.Kind {
	case KindString:
		return "'" + toString(v) + "'", nil
	case KindInt:
		i, err := toInt(v)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(i, 10), nil
	case KindFloat:
		f, err := toFloat(v)
		if err != nil {
			return "", err
		}
		return formatFixed(f, r.Precision), nil
	default:
		return "", fmt.Errorf("unsupported kind %s", r.Kind)
	}
}

// formatFixed renders f with prec decimal places. A value that rounds to
// zero is rendered unsigned.
func formatFixed(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if s[0] == '-' && strings.Trim(s, "-0.") == "" {
		return s[1:]
	}
	return s
}

// normalize converts v to the Go type stored in a Record for kind k
func normalize(k Kind, v interface{}) (interface{}, error) {
	switch k {
	case KindString:
		switch val := v.(type) {
		case string:
			return val, nil
		case []byte:
			return string(val), nil
		default:
			return nil, fmt.Errorf("cannot use %T as string", v)
		}
	case KindInt:
		switch v.(type) {
		case float32, float64:
			return nil, fmt.Errorf("cannot use %T as int", v)
		}
		return toInt(v)
	case KindFloat:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.New("non-finite float")
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", k)
	}
}

// toString renders a value as text
func toString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// toInt converts a driver or in-memory value to int64. Floats and decimal
// text are accepted only when integral.
func toInt(v interface{}) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, errors.New("nil value")
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, errors.New("uint64 value overflow for int64")
		}
		return int64(val), nil
	case float32:
		return integral(float64(val))
	case float64:
		// numeric columns can come back as float64 from some drivers
		return integral(val)
	case string, []byte:
		text, err := numericText(val)
		if err != nil {
			return 0, err
		}
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
		// NUMERIC(p,0) columns may be rendered as "42.0"
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as int", text)
		}
		return integral(f)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

func integral(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-integral value %v", f)
	}
	return int64(f), nil
}

// toFloat converts a driver or in-memory value to float64
func toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case string, []byte:
		text, err := numericText(val)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(text, 64)
	}
	i, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
	return float64(i), nil
}

// numericText trims driver text such as NUMERIC columns returned as []byte
func numericText(v interface{}) (string, error) {
	text := strings.TrimSpace(toString(v))
	if text == "" {
		return "", errors.New("empty numeric text")
	}
	return text, nil
}
