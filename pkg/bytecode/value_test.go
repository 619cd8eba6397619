package bytecode

import "testing"

func TestValueDisplay(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Num(7), "7"},
		{Num(3.5), "3.5"},
		{Num(-10), "-10"},
		{Num(0), "0"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{Null(), "nil"},
		{Str("hello"), `"hello"`},
		{Str(""), `""`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.v.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Num(1), Num(1), true},
		{Num(1), Num(2), false},
		{Bool(true), Bool(true), true},
		{Bool(true), Bool(false), false},
		{Str("a"), Str("a"), true},
		{Str("a"), Str("b"), false},
		{Null(), Null(), true},
		// tag mismatch is never equal, even for coercible payloads
		{Num(1), Bool(true), false},
		{Num(0), Null(), false},
		{Str("True"), Bool(true), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s Equal %s = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Num(1), true},
		{Num(-1), true},
		{Num(0), false},
		{Bool(true), true},
		{Bool(false), false},
		{Null(), false},
	}
	for _, tt := range tests {
		got, err := tt.v.Truthy()
		if err != nil {
			t.Fatalf("Truthy(%s): %v", tt.v, err)
		}
		if got != tt.want {
			t.Errorf("Truthy(%s) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestValueTruthyStringRejected(t *testing.T) {
	if _, err := Str("x").Truthy(); err == nil {
		t.Error("strings must not participate in boolean arithmetic")
	}
}
