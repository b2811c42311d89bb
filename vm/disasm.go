package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable bytecode listing for the chunk.
func (c *Chunk) Disassemble() string {
	return c.DisassembleWithName("")
}

// DisassembleWithName returns a human-readable bytecode listing with a name header.
func (c *Chunk) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}

	if len(c.ParamNames) > 0 {
		sb.WriteString(fmt.Sprintf("; Parameters (%d): %s\n", len(c.ParamNames), strings.Join(c.ParamNames, ", ")))
	}
	if c.LocalCount > 0 {
		sb.WriteString(fmt.Sprintf("; Locals: %d slots\n", c.LocalCount))
	}

	if len(c.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, k := range c.Constants {
			display := ToString(k.Value())
			if len(display) > 40 {
				display = display[:37] + "..."
			}
			display = strings.ReplaceAll(display, "\n", "\\n")
			sb.WriteString(fmt.Sprintf(";   [%3d] %s %q\n", i, k.Kind, display))
		}
	}

	offset := 0
	for offset < len(c.Code) {
		offset = c.disassembleInstruction(&sb, offset)
	}

	return sb.String()
}

// disassembleInstruction writes one instruction and returns the next offset.
func (c *Chunk) disassembleInstruction(sb *strings.Builder, offset int) int {
	op := Opcode(c.Code[offset])
	info := GetOpcodeInfo(op)

	sb.WriteString(fmt.Sprintf("%04x  %-14s", offset, info.Name))
	next := offset + 1 + info.OperandLen

	if next > len(c.Code) {
		sb.WriteString("  ; truncated operand\n")
		return len(c.Code)
	}

	switch op {
	case OpConst:
		idx := uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2])
		if int(idx) < len(c.Constants) {
			sb.WriteString(fmt.Sprintf("  %d  ; %q", idx, ToString(c.Constants[idx].Value())))
		} else {
			sb.WriteString(fmt.Sprintf("  %d  ; out of range", idx))
		}

	case OpLoadLocal, OpStoreLocal:
		slot := c.Code[offset+1]
		if int(slot) < len(c.VarNames) {
			sb.WriteString(fmt.Sprintf("  %d  ; %s", slot, c.VarNames[slot]))
		} else {
			sb.WriteString(fmt.Sprintf("  %d", slot))
		}

	case OpLoadParam:
		idx := c.Code[offset+1]
		if int(idx) < len(c.ParamNames) {
			sb.WriteString(fmt.Sprintf("  %d  ; %s", idx, c.ParamNames[idx]))
		} else {
			sb.WriteString(fmt.Sprintf("  %d", idx))
		}

	case OpJump, OpJumpTrue, OpJumpFalse:
		delta := int16(uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2]))
		sb.WriteString(fmt.Sprintf("  %+d  ; -> %04x", delta, next+int(delta)))

	case OpListNew:
		count := uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2])
		sb.WriteString(fmt.Sprintf("  %d", count))

	case OpCallBuiltin:
		id := Builtin(c.Code[offset+1])
		argc := c.Code[offset+2]
		sb.WriteString(fmt.Sprintf("  %s/%d", BuiltinName(id), argc))
	}

	sb.WriteString("\n")
	return next
}
