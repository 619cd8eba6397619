package bytecode

import (
	"bytes"
	"strings"
	"testing"
)

// buildChunk assembles a finalized chunk from constants and opcodes.
// Opcodes with an operand consume the next entry as the operand byte.
func buildChunk(t *testing.T, constants []Value, code ...byte) *Chunk {
	t.Helper()
	c := NewChunk()
	for _, v := range constants {
		if _, err := c.AddConstant(v); err != nil {
			t.Fatal(err)
		}
	}
	c.Code = append(c.Code, code...)
	c.Lines = make([]int, len(c.Code))
	for i := range c.Lines {
		c.Lines[i] = NoLine
	}
	c.Finalize()
	return c
}

func runChunk(t *testing.T, c *Chunk) (*VM, Status, error) {
	t.Helper()
	vm := NewVM()
	vm.Stdout = &bytes.Buffer{}
	status, err := vm.Run(c)
	return vm, status, err
}

func TestVMArithmetic(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		op   Opcode
		want float64
	}{
		{"add", 1, 2, OpAdd, 3},
		{"sub", 20, 30, OpSub, -10},
		{"mult", 6, 7, OpMult, 42},
		{"div", 7, 2, OpDiv, 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// pop order: b first, then a; the left argument is the
			// deeper stack slot
			c := buildChunk(t, []Value{Num(tt.a), Num(tt.b)},
				byte(OpConst), 0, byte(OpConst), 1, byte(tt.op), byte(OpRet))
			vm, status, err := runChunk(t, c)
			if err != nil || status != StatusOK {
				t.Fatalf("run: %s, %v", status, err)
			}
			if vm.Depth() != 1 {
				t.Fatalf("expected one result above the sentinel, got %d", vm.Depth())
			}
			if !vm.Tos().Equal(Num(tt.want)) {
				t.Errorf("got %s, want %g", vm.Tos(), tt.want)
			}
		})
	}
}

func TestVMArithmeticCoercesBools(t *testing.T) {
	// non-numeric operands coerce through bool to 1/0
	c := buildChunk(t, []Value{Bool(true), Num(41)},
		byte(OpConst), 0, byte(OpConst), 1, byte(OpAdd), byte(OpRet))
	vm, status, err := runChunk(t, c)
	if err != nil || status != StatusOK {
		t.Fatalf("run: %s, %v", status, err)
	}
	if !vm.Tos().Equal(Num(2)) {
		t.Errorf("True + 41 should coerce both to bool: got %s", vm.Tos())
	}
}

func TestVMArithmeticRejectsStrings(t *testing.T) {
	c := buildChunk(t, []Value{Str("x"), Num(1)},
		byte(OpConst), 0, byte(OpConst), 1, byte(OpAdd), byte(OpRet))
	_, status, err := runChunk(t, c)
	if status != StatusErr || err == nil {
		t.Fatalf("expected ERR for string arithmetic, got %s, %v", status, err)
	}
}

func TestVMLogical(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		op   Opcode
		want bool
	}{
		{"true and false", Bool(true), Bool(false), OpAnd, false},
		{"true and true", Bool(true), Bool(true), OpAnd, true},
		{"false or true", Bool(false), Bool(true), OpOr, true},
		{"false or false", Bool(false), Bool(false), OpOr, false},
		{"nonzero number is true", Num(2), Bool(true), OpAnd, true},
		{"zero number is false", Num(0), Bool(true), OpAnd, false},
		{"null is false", Null(), Bool(true), OpAnd, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildChunk(t, []Value{tt.a, tt.b},
				byte(OpConst), 0, byte(OpConst), 1, byte(tt.op), byte(OpRet))
			vm, status, err := runChunk(t, c)
			if err != nil || status != StatusOK {
				t.Fatalf("run: %s, %v", status, err)
			}
			if !vm.Tos().Equal(Bool(tt.want)) {
				t.Errorf("got %s, want %v", vm.Tos(), tt.want)
			}
		})
	}
}

func TestVMNegAndNot(t *testing.T) {
	c := buildChunk(t, []Value{Num(10)}, byte(OpConst), 0, byte(OpNeg), byte(OpRet))
	vm, _, _ := runChunk(t, c)
	if !vm.Tos().Equal(Num(-10)) {
		t.Errorf("NEG number: got %s", vm.Tos())
	}

	// NEG on a bool is logical complement
	c = buildChunk(t, []Value{Bool(true)}, byte(OpConst), 0, byte(OpNeg), byte(OpRet))
	vm, _, _ = runChunk(t, c)
	if !vm.Tos().Equal(Bool(false)) {
		t.Errorf("NEG bool: got %s", vm.Tos())
	}

	c = buildChunk(t, []Value{Num(0)}, byte(OpConst), 0, byte(OpNot), byte(OpRet))
	vm, _, _ = runChunk(t, c)
	if !vm.Tos().Equal(Bool(true)) {
		t.Errorf("NOT 0: got %s", vm.Tos())
	}

	// NEG on null is a tag error
	c = buildChunk(t, nil, byte(OpNeg), byte(OpRet))
	_, status, err := runChunk(t, c)
	if status != StatusErr || err == nil {
		t.Errorf("NEG on sentinel null should fault: %s, %v", status, err)
	}
}

func TestVMCmp(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Num(2), Num(2), true},
		{Num(2), Num(3), false},
		{Bool(true), Bool(true), true},
		{Str("a"), Str("a"), true},
		{Num(1), Bool(true), false},
	}
	for _, tt := range tests {
		c := buildChunk(t, []Value{tt.a, tt.b},
			byte(OpConst), 0, byte(OpConst), 1, byte(OpCmp), byte(OpRet))
		vm, _, _ := runChunk(t, c)
		if !vm.Tos().Equal(Bool(tt.want)) {
			t.Errorf("%s cmp %s: got %s, want %v", tt.a, tt.b, vm.Tos(), tt.want)
		}
	}
}

func TestVMPrint(t *testing.T) {
	c := buildChunk(t, []Value{Num(1), Str("hi")},
		byte(OpConst), 0, byte(OpPrint), byte(OpConst), 1, byte(OpPrint), byte(OpRet))
	var out bytes.Buffer
	vm := NewVM()
	vm.Stdout = &out
	status, err := vm.Run(c)
	if err != nil || status != StatusOK {
		t.Fatalf("run: %s, %v", status, err)
	}
	if out.String() != "1\n\"hi\"\n" {
		t.Errorf("print output %q", out.String())
	}
	if vm.Depth() != 0 {
		t.Errorf("print should consume its operand, depth %d", vm.Depth())
	}
}

func TestVMPop(t *testing.T) {
	c := buildChunk(t, []Value{Num(1), Num(2)},
		byte(OpConst), 0, byte(OpConst), 1, byte(OpPop), byte(OpRet))
	vm, _, _ := runChunk(t, c)
	if vm.Depth() != 1 || !vm.Tos().Equal(Num(1)) {
		t.Errorf("expected 1 on top after POP, got depth %d tos %s", vm.Depth(), vm.Tos())
	}
}

func TestVMDefineGlobal(t *testing.T) {
	c := buildChunk(t, []Value{Str("answer"), Num(42)},
		byte(OpConst), 1, byte(OpDefineGlobal), 0, byte(OpRet))
	vm, status, err := runChunk(t, c)
	if err != nil || status != StatusOK {
		t.Fatalf("run: %s, %v", status, err)
	}
	v, ok := vm.Global("answer")
	if !ok || !v.Equal(Num(42)) {
		t.Errorf("global answer = %s, %v", v, ok)
	}
}

func TestVMDefineGlobalNameMustBeString(t *testing.T) {
	c := buildChunk(t, []Value{Num(1), Num(42)},
		byte(OpConst), 1, byte(OpDefineGlobal), 0, byte(OpRet))
	_, status, err := runChunk(t, c)
	if status != StatusErr || err == nil {
		t.Fatalf("expected ERR for non-string name, got %s, %v", status, err)
	}
}

func TestVMDefineLocal(t *testing.T) {
	c := buildChunk(t, []Value{Str("x"), Num(7)},
		byte(OpConst), 1, byte(OpDefineLocal), 0, byte(OpRet))
	vm, status, err := runChunk(t, c)
	if err != nil || status != StatusOK {
		t.Fatalf("run: %s, %v", status, err)
	}
	v, ok := vm.Local("x")
	if !ok || !v.Equal(Num(7)) {
		t.Errorf("local x = %s, %v", v, ok)
	}
	if _, ok := vm.Global("x"); ok {
		t.Error("DEFINE_LOCAL must not touch globals")
	}
}

func TestVMGlobalsSurviveRuns(t *testing.T) {
	vm := NewVM()
	vm.Stdout = &bytes.Buffer{}

	c := buildChunk(t, []Value{Str("x"), Num(1)},
		byte(OpConst), 1, byte(OpDefineGlobal), 0, byte(OpRet))
	if status, err := vm.Run(c); status != StatusOK {
		t.Fatalf("first run: %v", err)
	}

	c2 := buildChunk(t, nil, byte(OpNop), byte(OpRet))
	if status, err := vm.Run(c2); status != StatusOK {
		t.Fatalf("second run: %v", err)
	}

	if _, ok := vm.Global("x"); !ok {
		t.Error("globals should survive across runs")
	}
}

func TestVMFrames(t *testing.T) {
	vm := NewVM()
	if vm.FrameDepth() != 1 {
		t.Fatalf("expected one bottom frame, got %d", vm.FrameDepth())
	}
	vm.PushFrame()
	if vm.FrameDepth() != 2 {
		t.Errorf("expected 2 frames, got %d", vm.FrameDepth())
	}
	if err := vm.PopFrame(); err != nil {
		t.Errorf("PopFrame: %v", err)
	}
	if err := vm.PopFrame(); err == nil {
		t.Error("the bottom frame must never pop")
	}
}

func TestVMStatuses(t *testing.T) {
	// RET halts OK
	c := buildChunk(t, nil, byte(OpRet))
	if _, status, _ := runChunk(t, c); status != StatusOK {
		t.Errorf("RET: expected OK, got %s", status)
	}

	// running into EOF is an error: the program ran off its end
	c = buildChunk(t, nil, byte(OpNop), byte(OpEOF))
	_, status, err := runChunk(t, c)
	if status != StatusErr || err == nil {
		t.Errorf("EOF: expected ERR, got %s, %v", status, err)
	}
	if !strings.Contains(err.Error(), "ran off the end") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVMInfLoopCap(t *testing.T) {
	code := make([]byte, 64)
	for i := range code {
		code[i] = byte(OpNop)
	}
	code = append(code, byte(OpRet))
	c := buildChunk(t, nil, code...)

	vm := NewVM()
	vm.Stdout = &bytes.Buffer{}
	vm.MaxSteps = 10
	status, err := vm.Run(c)
	if status != StatusInfLoop || err == nil {
		t.Errorf("expected INF_LOOP, got %s, %v", status, err)
	}
}

func TestVMUnknownOpcode(t *testing.T) {
	c := buildChunk(t, nil, 0xEE, byte(OpRet))
	_, status, err := runChunk(t, c)
	if status != StatusErr || err == nil {
		t.Fatalf("expected ERR for unknown opcode, got %s, %v", status, err)
	}
	if !strings.Contains(err.Error(), "unknown opcode") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVMConstIndexOutOfRange(t *testing.T) {
	c := buildChunk(t, nil, byte(OpConst), 9, byte(OpRet))
	_, status, err := runChunk(t, c)
	if status != StatusErr || err == nil {
		t.Fatalf("expected ERR, got %s, %v", status, err)
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVMStackUnderflow(t *testing.T) {
	// a binary op with nothing above the sentinel must fault, not panic
	c := buildChunk(t, nil, byte(OpAdd), byte(OpRet))
	_, status, err := runChunk(t, c)
	if status != StatusErr || err == nil {
		t.Fatalf("expected ERR, got %s, %v", status, err)
	}
	if !strings.Contains(err.Error(), "underflow") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVMSentinelAlwaysDefined(t *testing.T) {
	vm := NewVM()
	if !vm.Tos().IsNull() {
		t.Error("a fresh VM's top of stack should be the null sentinel")
	}
}
