package bytecode

import "fmt"

// Opcode represents a single-byte bytecode instruction.
type Opcode byte

const (
	OpNop Opcode = iota // No operation

	OpConst // Push constant from pool: OpConst <index:u8>

	OpNot  // Logical negation of top of stack
	OpNeg  // Arithmetic negation (number) or logical complement (bool)
	OpAdd  // Pop two, push sum
	OpSub  // Pop two, push difference (a - b where b is popped first)
	OpMult // Pop two, push product
	OpDiv  // Pop two, push quotient
	OpOr   // Pop two, push logical or
	OpAnd  // Pop two, push logical and
	OpCmp  // Pop two, push equality as bool

	OpPrint // Pop top of stack, write its display form followed by a newline
	OpPop   // Pop and discard top of stack

	OpDefineGlobal // Pop value, bind global named by constants[<index:u8>]
	OpDefineLocal  // Pop value, bind in the top local frame: OpDefineLocal <index:u8>

	OpRet // Halt with status OK
	OpEOF // Halt with status Err (ran off the end of the program)
)

// OpcodeInfo provides metadata about each opcode.
type OpcodeInfo struct {
	Name       string // Human-readable name
	StackPop   int    // How many values popped from stack
	StackPush  int    // How many values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop:   {"NOP", 0, 0, 0},
	OpConst: {"CONST", 0, 1, 1},

	OpNot:  {"NOT", 1, 1, 0},
	OpNeg:  {"NEG", 1, 1, 0},
	OpAdd:  {"ADD", 2, 1, 0},
	OpSub:  {"SUB", 2, 1, 0},
	OpMult: {"MULT", 2, 1, 0},
	OpDiv:  {"DIV", 2, 1, 0},
	OpOr:   {"OR", 2, 1, 0},
	OpAnd:  {"AND", 2, 1, 0},
	OpCmp:  {"CMP", 2, 1, 0},

	OpPrint: {"PRINT", 1, 0, 0},
	OpPop:   {"POP", 1, 0, 0},

	OpDefineGlobal: {"DEFINE_GLOBAL", 1, 0, 1},
	OpDefineLocal:  {"DEFINE_LOCAL", 1, 0, 1},

	OpRet: {"RET", 0, 0, 0},
	OpEOF: {"EOF", 0, 0, 0},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo named "UNKNOWN(0xNN)", with the opcode byte in
// hex, if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return GetOpcodeInfo(op).OperandLen
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsHalt returns true if this opcode terminates execution.
func (op Opcode) IsHalt() bool {
	return op == OpRet || op == OpEOF
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
