package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// #region float
// Float is a scalar that is either defined or absent. The zero value is absent.
// Absent is a first-class state: it is never read back as 0.
type Float struct {
	v  float64
	ok bool
}

// Some returns a defined value. NaN and ±Inf collapse to absent.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{v: v, ok: true}
}

// None returns an absent value.
func None() Float {
	return Float{}
}

// Get returns the value and whether it is defined.
func (f Float) Get() (float64, bool) {
	return f.v, f.ok
}

// Defined reports whether the value is present.
func (f Float) Defined() bool {
	return f.ok
}

func (f Float) String() string {
	if !f.ok {
		return "absent"
	}
	return strconv.FormatFloat(f.v, 'g', -1, 64)
}

// #endregion float

// #region json
// MarshalJSON encodes absent as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.ok {
		return []byte("null"), nil
	}
	return json.Marshal(f.v)
}

// UnmarshalJSON decodes null as absent.
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("optional float: %w", err)
	}
	*f = Some(v)
	return nil
}

// #endregion json

// #region helpers
// Values collects the defined entries of fs in order.
func Values(fs []Float) []float64 {
	out := make([]float64, 0, len(fs))
	for _, f := range fs {
		if f.ok {
			out = append(out, f.v)
		}
	}
	return out
}

// CountDefined returns how many entries of fs are defined.
func CountDefined(fs []Float) int {
	n := 0
	for _, f := range fs {
		if f.ok {
			n++
		}
	}
	return n
}

// #endregion helpers
