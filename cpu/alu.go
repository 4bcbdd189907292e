package cpu

import "github.com/valerio/lr35902core/bit"

// add, adc, sub, sbc, and, or, xor, cp implement the flag rules of
// §4.3 exactly. They update register A in place except cp, which leaves
// A untouched.

func (c *CPU) add(value uint8) {
	a := c.a
	result := a + value
	c.setFlagTo(flagH, (a&0x0F)+(value&0x0F) > 0x0F)
	c.setFlagTo(flagC, uint16(a)+uint16(value) > 0xFF)
	c.resetFlag(flagN)
	c.a = result
	c.setFlagTo(flagZ, c.a == 0)
}

func (c *CPU) adc(value uint8) {
	a := c.a
	carryIn := c.flagBit(flagC)
	result := a + value + carryIn
	c.setFlagTo(flagH, (a&0x0F)+(value&0x0F)+carryIn > 0x0F)
	c.setFlagTo(flagC, uint16(a)+uint16(value)+uint16(carryIn) > 0xFF)
	c.resetFlag(flagN)
	c.a = result
	c.setFlagTo(flagZ, c.a == 0)
}

func (c *CPU) sub(value uint8) {
	a := c.a
	result := a - value
	c.setFlagTo(flagH, (value&0x0F) > (a&0x0F))
	c.setFlagTo(flagC, value > a)
	c.setFlag(flagN)
	c.a = result
	c.setFlagTo(flagZ, c.a == 0)
}

func (c *CPU) sbc(value uint8) {
	a := c.a
	carryIn := c.flagBit(flagC)
	sub := uint16(value) + uint16(carryIn)
	result := a - uint8(sub)
	c.setFlagTo(flagH, (value&0x0F)+carryIn > (a & 0x0F))
	c.setFlagTo(flagC, uint16(a) < sub)
	c.setFlag(flagN)
	c.a = result
	c.setFlagTo(flagZ, c.a == 0)
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlagTo(flagZ, c.a == 0)
	c.resetFlag(flagN)
	c.setFlag(flagH)
	c.resetFlag(flagC)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlagTo(flagZ, c.a == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
	c.resetFlag(flagC)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlagTo(flagZ, c.a == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
	c.resetFlag(flagC)
}

func (c *CPU) cp(value uint8) {
	a := c.a
	c.setFlagTo(flagZ, a == value)
	c.setFlag(flagN)
	c.setFlagTo(flagH, (value&0x0F) > (a&0x0F))
	c.setFlagTo(flagC, value > a)
}

// aluOp dispatches the y-selected ALU operation (the shared body for the
// register block 0x80-0xBF per design note: parameterized by the decoded
// selector rather than 8 copies). The immediate forms (0xC6, 0xCE, ...)
// in executeBlockX3 call the individual helpers directly.
func (c *CPU) aluOp(op uint8, value uint8) {
	switch op {
	case 0:
		c.add(value)
	case 1:
		c.adc(value)
	case 2:
		c.sub(value)
	case 3:
		c.sbc(value)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	case 7:
		c.cp(value)
	}
}

// incR8/decR8 implement INC/DEC r8: Z,H set from the result, N fixed, C
// preserved (it is simply never touched here).
func (c *CPU) incR8(index uint8) {
	old := c.getR8(index)
	result := old + 1
	c.setR8(index, result)
	c.setFlagTo(flagZ, result == 0)
	c.setFlagTo(flagH, (old&0x0F) == 0x0F)
	c.resetFlag(flagN)
}

func (c *CPU) decR8(index uint8) {
	old := c.getR8(index)
	result := old - 1
	c.setR8(index, result)
	c.setFlagTo(flagZ, result == 0)
	c.setFlagTo(flagH, (old&0x0F) == 0x00)
	c.setFlag(flagN)
}

// addHL implements ADD HL,rr: N=0, H/C on bit 11/15 carry, Z preserved.
func (c *CPU) addHL(value uint16) {
	hl := c.getHL()
	result := hl + value
	c.setFlagTo(flagH, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlagTo(flagC, uint32(hl)+uint32(value) > 0xFFFF)
	c.resetFlag(flagN)
	c.setHL(result)
}

// addSPSigned implements both ADD SP,e and LD HL,SP+e: Z=0,N=0, H/C
// computed on the unsigned low byte of SP against the immediate treated
// as unsigned 8-bit (per §4.3, not sign-extended arithmetic).
func (c *CPU) addSPSigned(e int8) uint16 {
	sp := c.sp
	offset := uint16(uint8(e))
	result := sp + uint16(int16(e))

	c.resetFlag(flagZ)
	c.resetFlag(flagN)
	c.setFlagTo(flagH, (sp&0x0F)+(offset&0x0F) > 0x0F)
	c.setFlagTo(flagC, (sp&0xFF)+(offset&0xFF) > 0xFF)

	return result
}

// --- rotate/shift family: RLC, RRC, RL, RR, SLA, SRA, SWAP, SRL ---
// computeZ controls whether Z is forced to 0 (primary-opcode variants
// on A) or computed from the result (CB-prefixed variants).

func (c *CPU) rlc(value uint8, computeZ bool) uint8 {
	carryOut := value&0x80 != 0
	result := (value << 1) | bit.Value(7, value)
	c.applyRotateFlags(result, carryOut, computeZ)
	return result
}

func (c *CPU) rrc(value uint8, computeZ bool) uint8 {
	carryOut := value&0x01 != 0
	result := (value >> 1) | (value << 7)
	c.applyRotateFlags(result, carryOut, computeZ)
	return result
}

func (c *CPU) rl(value uint8, computeZ bool) uint8 {
	carryOut := value&0x80 != 0
	result := (value << 1) | c.flagBit(flagC)
	c.applyRotateFlags(result, carryOut, computeZ)
	return result
}

func (c *CPU) rr(value uint8, computeZ bool) uint8 {
	carryOut := value&0x01 != 0
	result := (value >> 1) | (c.flagBit(flagC) << 7)
	c.applyRotateFlags(result, carryOut, computeZ)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	carryOut := value&0x80 != 0
	result := value << 1
	c.applyRotateFlags(result, carryOut, true)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	carryOut := value&0x01 != 0
	result := (value >> 1) | (value & 0x80)
	c.applyRotateFlags(result, carryOut, true)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	carryOut := value&0x01 != 0
	result := value >> 1
	c.applyRotateFlags(result, carryOut, true)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := (value << 4) | (value >> 4)
	c.setFlagTo(flagZ, result == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
	c.resetFlag(flagC)
	return result
}

func (c *CPU) applyRotateFlags(result uint8, carryOut bool, computeZ bool) {
	c.setFlagTo(flagZ, computeZ && result == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
	c.setFlagTo(flagC, carryOut)
}

// bitTest implements BIT n,r: Z=¬r[n], N=0, H=1, C preserved.
func (c *CPU) bitTest(n uint8, value uint8) {
	c.setFlagTo(flagZ, !bit.IsSet(n, value))
	c.resetFlag(flagN)
	c.setFlag(flagH)
}

// daa implements the standard BCD decimal-adjust table for A after an
// add/sub sequence, consulting N/H/C from the preceding operation.
func (c *CPU) daa() {
	a := c.a
	carry := c.isSet(flagC)
	halfCarry := c.isSet(flagH)
	sub := c.isSet(flagN)

	var correction uint8
	newCarry := carry

	if sub {
		if halfCarry {
			correction |= 0x06
		}
		if carry {
			correction |= 0x60
		}
		a -= correction
	} else {
		if halfCarry || (a&0x0F) > 0x09 {
			correction |= 0x06
		}
		if carry || a > 0x99 {
			correction |= 0x60
			newCarry = true
		}
		a += correction
	}

	c.a = a
	c.setFlagTo(flagZ, c.a == 0)
	c.resetFlag(flagH)
	c.setFlagTo(flagC, newCarry)
}
