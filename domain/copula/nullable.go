package copula

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
)

// NullableFloat is a float64 whose NA state (NaN) round-trips as JSON null
// and SQL NULL. Used for the fields the output contract allows to be NA:
// tail-dependence coefficients, goodness-of-fit statistics and p-values, and
// coefficients of variation with a zero reference value.
type NullableFloat float64

// NAF returns the NA-valued NullableFloat.
func NAF() NullableFloat {
	return NullableFloat(math.NaN())
}

// IsNA reports whether the value is not available.
func (f NullableFloat) IsNA() bool {
	return math.IsNaN(float64(f))
}

// Float64 returns the underlying value (NaN when NA).
func (f NullableFloat) Float64() float64 {
	return float64(f)
}

// MarshalJSON encodes NA as null.
func (f NullableFloat) MarshalJSON() ([]byte, error) {
	if f.IsNA() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'g', -1, 64)), nil
}

// UnmarshalJSON decodes null as NA.
func (f *NullableFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NAF()
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}

// Value implements driver.Valuer: NA becomes SQL NULL.
func (f NullableFloat) Value() (driver.Value, error) {
	if f.IsNA() {
		return nil, nil
	}
	return float64(f), nil
}

// Scan implements sql.Scanner: SQL NULL becomes NA.
func (f *NullableFloat) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = NAF()
	case float64:
		*f = NullableFloat(v)
	case int64:
		*f = NullableFloat(v)
	default:
		return fmt.Errorf("cannot scan %T into NullableFloat", src)
	}
	return nil
}
