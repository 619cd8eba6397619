package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a chunk as a human-readable bytecode listing.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)

	for offset := 0; offset < len(c.Code); {
		offset = c.disassembleInstruction(&sb, offset)
	}

	if len(c.Constants) > 0 {
		fmt.Fprintf(&sb, "-- constants (%d) --\n", len(c.Constants))
		for i, v := range c.Constants {
			fmt.Fprintf(&sb, "%4d: %s\n", i, v.Display())
		}
	}

	return sb.String()
}

func (c *Chunk) disassembleInstruction(sb *strings.Builder, offset int) int {
	op := Opcode(c.Code[offset])
	info := GetOpcodeInfo(op)

	fmt.Fprintf(sb, "%04d ", offset)
	if line := c.Line(offset); line >= 0 {
		fmt.Fprintf(sb, "%4d ", line)
	} else {
		sb.WriteString("   | ")
	}
	fmt.Fprintf(sb, "%-14s", info.Name)

	if info.OperandLen > 0 {
		if offset+1 >= len(c.Code) {
			sb.WriteString(" <truncated>\n")
			return len(c.Code)
		}
		idx := c.Code[offset+1]
		fmt.Fprintf(sb, " %3d", idx)
		if v, err := c.Constant(idx); err == nil {
			fmt.Fprintf(sb, " (%s)", v.Display())
		}
	}

	sb.WriteByte('\n')
	return offset + 1 + info.OperandLen
}
