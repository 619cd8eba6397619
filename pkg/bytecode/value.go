package bytecode

import (
	"fmt"
	"strconv"
)

// Tag identifies the runtime type of a Value.
type Tag uint8

const (
	TagNull Tag = iota
	TagNum
	TagBool
	TagStr
)

var tagNames = map[Tag]string{
	TagNull: "null",
	TagNum:  "number",
	TagBool: "bool",
	TagStr:  "string",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", t)
}

// Value is a tagged runtime value. Numbers and booleans are copied by value;
// string payloads are immutable Go strings, so sharing them needs no copy.
type Value struct {
	Tag  Tag
	Num  float64
	Bool bool
	Str  string
}

// Null returns the null value.
func Null() Value { return Value{Tag: TagNull} }

// Num wraps a float64 as a Value.
func Num(f float64) Value { return Value{Tag: TagNum, Num: f} }

// Bool wraps a bool as a Value.
func Bool(b bool) Value { return Value{Tag: TagBool, Bool: b} }

// Str wraps a string as a Value.
func Str(s string) Value { return Value{Tag: TagStr, Str: s} }

func (v Value) IsNull() bool { return v.Tag == TagNull }
func (v Value) IsNum() bool  { return v.Tag == TagNum }
func (v Value) IsBool() bool { return v.Tag == TagBool }
func (v Value) IsStr() bool  { return v.Tag == TagStr }

// Equal compares by tag, then payload.
func (v Value) Equal(other Value) bool {
	if v.Tag != other.Tag {
		return false
	}
	switch v.Tag {
	case TagNull:
		return true
	case TagNum:
		return v.Num == other.Num
	case TagBool:
		return v.Bool == other.Bool
	case TagStr:
		return v.Str == other.Str
	}
	return false
}

// Display returns the form PRINT writes: minimal decimal for numbers,
// True/False for booleans, nil for null, and strings surrounded by quotes.
func (v Value) Display() string {
	switch v.Tag {
	case TagNum:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case TagBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case TagStr:
		return `"` + v.Str + `"`
	default:
		return "nil"
	}
}

func (v Value) String() string {
	return v.Display()
}

// Truthy coerces a value to boolean: non-zero numbers are true, null is
// false. Strings never participate in boolean arithmetic.
func (v Value) Truthy() (bool, error) {
	switch v.Tag {
	case TagNull:
		return false, nil
	case TagNum:
		return v.Num != 0, nil
	case TagBool:
		return v.Bool, nil
	default:
		return false, fmt.Errorf("cannot coerce %s value to bool", v.Tag)
	}
}
