package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind tells which side of the union a Value holds.
type Kind int

const (
	NumberKind Kind = iota
	StringKind
)

func (k Kind) String() string {
	if k == NumberKind {
		return "number"
	}
	return "string"
}

// Value is a dynamically typed cell: either a number or a string.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Num creates a number Value.
func Num(f float64) Value {
	if f == 0 {
		// fold -0 into 0 so both hash and print the same way
		f = 0
	}
	return Value{kind: NumberKind, num: f}
}

// Int creates a number Value from an int.
func Int(i int) Value {
	return Num(float64(i))
}

// Str creates a string Value.
func Str(s string) Value {
	return Value{kind: StringKind, str: s}
}

// Parse turns user input into a Value. Anything that reads as a finite
// number becomes a number, everything else is kept as a string.
func Parse(s string) Value {
	if f, ok := parseNumber(s); ok {
		return Num(f)
	}
	return Str(s)
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNumber reports whether the value was stored as a number.
func (v Value) IsNumber() bool {
	return v.kind == NumberKind
}

// AsNumber returns the numeric reading of the value. Strings that hold a
// finite number convert; other strings report false.
func (v Value) AsNumber() (float64, bool) {
	if v.kind == NumberKind {
		return v.num, true
	}
	return parseNumber(v.str)
}

// Float returns the numeric reading of the value, or 0 if it has none.
func (v Value) Float() float64 {
	f, _ := v.AsNumber()
	return f
}

// String returns the display form of the value.
func (v Value) String() string {
	if v.kind == NumberKind {
		return formatNumber(v.num)
	}
	return v.str
}

// Truthy follows the usual scripting rules: zero and the empty string are false.
func (v Value) Truthy() bool {
	if v.kind == NumberKind {
		return v.num != 0
	}
	return v.str != ""
}

// Identity is the strict key of a value: kind and representation both count.
// It is what duplicate elimination uses.
func (v Value) Identity() string {
	if v.kind == NumberKind {
		return "n:" + formatNumber(v.num)
	}
	return "s:" + v.str
}

// LooseKey is the key under loose equality: numeric strings collapse onto the
// number they spell. Two values are Equal exactly when their LooseKeys match.
func (v Value) LooseKey() string {
	if f, ok := v.AsNumber(); ok {
		return "n:" + formatNumber(f)
	}
	return "s:" + v.str
}

// Equal is loose equality. If both sides read as numbers they compare
// numerically ("20" equals 20 and "20.0"), otherwise their strings compare.
func Equal(a, b Value) bool {
	fa, okA := a.AsNumber()
	fb, okB := b.AsNumber()
	if okA && okB {
		return fa == fb
	}
	if okA != okB {
		return false
	}
	return a.str == b.str
}

// Compare orders two values: numerically when both read as numbers,
// lexicographically on their display strings otherwise.
func Compare(a, b Value) int {
	fa, okA := a.AsNumber()
	fb, okB := b.AsNumber()
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.String(), b.String())
}

// MarshalJSON writes numbers as JSON numbers and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == NumberKind {
		return []byte(formatNumber(v.num)), nil
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts a JSON number, string, boolean or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a Go value as produced by decoders and database drivers.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Str("")
	case Value:
		return x
	case float64:
		return Num(x)
	case float32:
		return Num(float64(x))
	case int:
		return Int(x)
	case int64:
		return Num(float64(x))
	case int32:
		return Num(float64(x))
	case bool:
		return Str(strconv.FormatBool(x))
	case []byte:
		return Parse(string(x))
	case string:
		return Str(x)
	default:
		return Str(strings.TrimSpace(toString(x)))
	}
}

func toString(x any) string {
	data, err := json.Marshal(x)
	if err != nil {
		return ""
	}
	return string(data)
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f == 0 {
		f = 0
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
