package cpu

import "github.com/valerio/lr35902core/bit"

func (c *CPU) setFlag(f Flag)   { c.f |= uint8(f) }
func (c *CPU) resetFlag(f Flag) { c.f &^= uint8(f) }
func (c *CPU) isSet(f Flag) bool {
	return c.f&uint8(f) != 0
}

func (c *CPU) setFlagTo(f Flag, cond bool) {
	if cond {
		c.setFlag(f)
		return
	}
	c.resetFlag(f)
}

func (c *CPU) flagBit(f Flag) uint8 {
	if c.isSet(f) {
		return 1
	}
	return 0
}

func (c *CPU) setBC(v uint16) { c.b, c.c = bit.High(v), bit.Low(v) }
func (c *CPU) getBC() uint16  { return bit.Combine(c.b, c.c) }

func (c *CPU) setDE(v uint16) { c.d, c.e = bit.High(v), bit.Low(v) }
func (c *CPU) getDE() uint16  { return bit.Combine(c.d, c.e) }

func (c *CPU) setHL(v uint16) { c.h, c.l = bit.High(v), bit.Low(v) }
func (c *CPU) getHL() uint16  { return bit.Combine(c.h, c.l) }

// setAF masks the low nibble of F to zero: those bits never exist on
// hardware and any write path that lands here (POP AF, LD A,imm affecting
// F indirectly never happens, but POP AF does) must enforce it.
func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0
}
func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }

// reg8Ptr returns a pointer to the 8-bit register selected by a 3-bit
// decode field (the standard B,C,D,E,H,L,(HL),A ordering used throughout
// the opcode map). Index 6 ((HL)) has no backing register and must be
// handled by the caller via getR8/setR8 instead, which route through the
// bus.
func (c *CPU) reg8Ptr(index uint8) *uint8 {
	switch index {
	case 0:
		return &c.b
	case 1:
		return &c.c
	case 2:
		return &c.d
	case 3:
		return &c.e
	case 4:
		return &c.h
	case 5:
		return &c.l
	case 7:
		return &c.a
	default:
		return nil // index 6 == (HL), handled by caller
	}
}

// getR8 reads the register/memory operand selected by a 3-bit field.
func (c *CPU) getR8(index uint8) uint8 {
	if index == 6 {
		return c.busRead(c.getHL())
	}
	return *c.reg8Ptr(index)
}

// setR8 writes the register/memory operand selected by a 3-bit field.
func (c *CPU) setR8(index uint8, value uint8) {
	if index == 6 {
		c.busWrite(c.getHL(), value)
		return
	}
	*c.reg8Ptr(index) = value
}

// reg16 table used by opcodes keyed on p∈{0,1,2,3}: BC,DE,HL,SP.
func (c *CPU) getReg16(p uint8) uint16 {
	switch p {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setReg16(p uint8, v uint16) {
	switch p {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.sp = v
	}
}

// reg16 table used by PUSH/POP keyed on p∈{0,1,2,3}: BC,DE,HL,AF.
func (c *CPU) getReg16Stack(p uint8) uint16 {
	if p == 3 {
		return c.getAF()
	}
	return c.getReg16(p)
}

func (c *CPU) setReg16Stack(p uint8, v uint16) {
	if p == 3 {
		c.setAF(v)
		return
	}
	c.setReg16(p, v)
}

// pushWord/popWord implement the stack discipline: SP pre-decrements on
// push (high byte written first, at the higher address), post-increments
// on pop (low byte read first).
func (c *CPU) pushWord(v uint16) {
	c.sp--
	c.busWrite(c.sp, bit.High(v))
	c.sp--
	c.busWrite(c.sp, bit.Low(v))
}

func (c *CPU) popWord() uint16 {
	low := c.busRead(c.sp)
	c.sp++
	high := c.busRead(c.sp)
	c.sp++
	return bit.Combine(high, low)
}
