package bytecode

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("tack.vm")

// Status is the VM's termination status.
type Status int

const (
	// StatusOK means execution reached RET.
	StatusOK Status = iota
	// StatusErr means execution faulted or ran off the end of the program.
	StatusErr
	// StatusInfLoop means the instruction safety cap was exceeded.
	StatusInfLoop
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusErr:
		return "ERR"
	case StatusInfLoop:
		return "INF_LOOP"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// DefaultMaxSteps bounds the fetch loop to detect runaway execution.
const DefaultMaxSteps = 1 << 20

// VM executes a finalized bytecode chunk. The operand stack keeps a null
// sentinel at slot 0 so the top of stack is always defined. Globals and the
// local frame stack survive across Run calls, which lets a REPL accumulate
// bindings.
type VM struct {
	chunk *Chunk
	ip    int
	stack []Value

	globals map[string]Value
	frames  []map[string]Value // bottom frame is always present

	// Stdout receives PRINT output. Defaults to os.Stdout.
	Stdout io.Writer

	// MaxSteps caps the number of executed instructions per Run.
	MaxSteps int

	// Trace logs each instruction as it executes.
	Trace bool
}

// NewVM creates a VM with an empty global environment and one local frame.
func NewVM() *VM {
	return &VM{
		stack:    []Value{Null()},
		globals:  make(map[string]Value),
		frames:   []map[string]Value{make(map[string]Value)},
		Stdout:   os.Stdout,
		MaxSteps: DefaultMaxSteps,
	}
}

// Run executes a finalized chunk. The operand stack is reset to the sentinel
// before execution; globals and local frames are kept. Run never panics on
// malformed input: faults surface as StatusErr with a diagnostic.
func (vm *VM) Run(chunk *Chunk) (Status, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.stack = vm.stack[:1]
	vm.stack[0] = Null()

	for steps := 0; steps < vm.MaxSteps; steps++ {
		if vm.ip >= len(chunk.Code) {
			return StatusErr, fmt.Errorf("vm: instruction pointer %d past end of chunk", vm.ip)
		}

		pos := vm.ip
		op := Opcode(chunk.Code[vm.ip])
		vm.ip++

		if vm.Trace {
			log.Debugf("%04d %-14s tos=%s depth=%d", pos, op, vm.tos().Display(), vm.Depth())
		}

		switch op {
		case OpNop:
			// nothing

		case OpConst:
			idx, err := vm.readOperand(op)
			if err != nil {
				return StatusErr, err
			}
			v, err := chunk.Constant(idx)
			if err != nil {
				return StatusErr, fmt.Errorf("vm: at %04d: %w", pos, err)
			}
			vm.push(v)

		case OpNeg:
			// the sentinel makes tos always defined; NEG rewrites in place
			top := vm.tos()
			switch top.Tag {
			case TagNum:
				vm.setTos(Num(-top.Num))
			case TagBool:
				vm.setTos(Bool(!top.Bool))
			default:
				return StatusErr, fmt.Errorf("vm: at %04d: operand of NEG must be number or bool, got %s", pos, top.Tag)
			}

		case OpNot:
			b, err := vm.tos().Truthy()
			if err != nil {
				return StatusErr, fmt.Errorf("vm: at %04d: %w", pos, err)
			}
			vm.setTos(Bool(!b))

		case OpAdd, OpSub, OpMult, OpDiv:
			if vm.Depth() < 2 {
				return StatusErr, vm.underflow(op, pos)
			}
			b := vm.pop()
			a := vm.pop()
			result, err := arith(op, a, b)
			if err != nil {
				return StatusErr, fmt.Errorf("vm: at %04d: %w", pos, err)
			}
			vm.push(result)

		case OpAnd, OpOr:
			if vm.Depth() < 2 {
				return StatusErr, vm.underflow(op, pos)
			}
			b := vm.pop()
			a := vm.pop()
			ab, err := a.Truthy()
			if err != nil {
				return StatusErr, fmt.Errorf("vm: at %04d: %w", pos, err)
			}
			bb, err := b.Truthy()
			if err != nil {
				return StatusErr, fmt.Errorf("vm: at %04d: %w", pos, err)
			}
			if op == OpAnd {
				vm.push(Bool(ab && bb))
			} else {
				vm.push(Bool(ab || bb))
			}

		case OpCmp:
			if vm.Depth() < 2 {
				return StatusErr, vm.underflow(op, pos)
			}
			b := vm.pop()
			a := vm.pop()
			vm.push(Bool(a.Equal(b)))

		case OpPrint:
			if vm.Depth() < 1 {
				return StatusErr, vm.underflow(op, pos)
			}
			fmt.Fprintln(vm.Stdout, vm.pop().Display())

		case OpPop:
			if vm.Depth() < 1 {
				return StatusErr, vm.underflow(op, pos)
			}
			vm.pop()

		case OpDefineGlobal, OpDefineLocal:
			idx, err := vm.readOperand(op)
			if err != nil {
				return StatusErr, err
			}
			name, err := chunk.Constant(idx)
			if err != nil {
				return StatusErr, fmt.Errorf("vm: at %04d: %w", pos, err)
			}
			if !name.IsStr() {
				return StatusErr, fmt.Errorf("vm: at %04d: %s name constant must be a string, got %s", pos, op, name.Tag)
			}
			if vm.Depth() < 1 {
				return StatusErr, vm.underflow(op, pos)
			}
			if op == OpDefineGlobal {
				vm.globals[name.Str] = vm.pop()
			} else {
				vm.frames[len(vm.frames)-1][name.Str] = vm.pop()
			}

		case OpRet:
			return StatusOK, nil

		case OpEOF:
			return StatusErr, fmt.Errorf("vm: ran off the end of the program")

		default:
			return StatusErr, fmt.Errorf("vm: unknown opcode 0x%02X at %04d", byte(op), pos)
		}
	}

	return StatusInfLoop, fmt.Errorf("vm: exceeded %d instructions", vm.MaxSteps)
}

// arith evaluates a numeric binary opcode. Two numbers produce a number;
// otherwise both operands coerce through bool to 1/0 before the arithmetic.
func arith(op Opcode, a, b Value) (Value, error) {
	an, bn := a.Num, b.Num
	if !a.IsNum() || !b.IsNum() {
		ab, err := a.Truthy()
		if err != nil {
			return Null(), fmt.Errorf("left operand of %s: %w", op, err)
		}
		bb, err := b.Truthy()
		if err != nil {
			return Null(), fmt.Errorf("right operand of %s: %w", op, err)
		}
		an, bn = boolToNum(ab), boolToNum(bb)
	}

	switch op {
	case OpAdd:
		return Num(an + bn), nil
	case OpSub:
		return Num(an - bn), nil
	case OpMult:
		return Num(an * bn), nil
	case OpDiv:
		return Num(an / bn), nil
	}
	return Null(), fmt.Errorf("not an arithmetic opcode: %s", op)
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// readOperand consumes the single operand byte following the current opcode.
func (vm *VM) readOperand(op Opcode) (byte, error) {
	if vm.ip >= len(vm.chunk.Code) {
		return 0, fmt.Errorf("vm: %s at %04d is missing its operand byte", op, vm.ip-1)
	}
	operand := vm.chunk.Code[vm.ip]
	vm.ip++
	return operand, nil
}

func (vm *VM) underflow(op Opcode, pos int) error {
	return fmt.Errorf("vm: at %04d: stack underflow executing %s", pos, op)
}

// push appends a value at the top of the operand stack.
func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

// pop removes and returns the top of stack. Callers check Depth first;
// the sentinel at slot 0 is never removed.
func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

// tos returns the top of stack, which is always defined thanks to the
// sentinel.
func (vm *VM) tos() Value {
	return vm.stack[len(vm.stack)-1]
}

func (vm *VM) setTos(v Value) {
	vm.stack[len(vm.stack)-1] = v
}

// Depth returns the number of values above the sentinel.
func (vm *VM) Depth() int {
	return len(vm.stack) - 1
}

// Tos returns the current top of stack without removing it.
func (vm *VM) Tos() Value {
	return vm.tos()
}

// Global looks up a binding in the global environment.
func (vm *VM) Global(name string) (Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// Local looks up a binding in the top local frame.
func (vm *VM) Local(name string) (Value, bool) {
	v, ok := vm.frames[len(vm.frames)-1][name]
	return v, ok
}

// PushFrame enters a new local scope. Reserved for block and function
// scoping; only the top frame is exercised by DEFINE_LOCAL today.
func (vm *VM) PushFrame() {
	vm.frames = append(vm.frames, make(map[string]Value))
}

// PopFrame leaves the current local scope. The bottom frame is never popped.
func (vm *VM) PopFrame() error {
	if len(vm.frames) <= 1 {
		return fmt.Errorf("vm: cannot pop the bottom local frame")
	}
	vm.frames = vm.frames[:len(vm.frames)-1]
	return nil
}

// FrameDepth returns the number of local frames.
func (vm *VM) FrameDepth() int {
	return len(vm.frames)
}
