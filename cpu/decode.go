package cpu

// executePrimary dispatches one of the 256 primary opcodes. Per the design
// note, the x/y/z/p/q decomposition classically used for this instruction
// set parameterizes the x∈{0,1,2} blocks (192 opcodes: 16-bit loads, 8-bit
// loads/INC/DEC, rotates-on-A, the LD r,r' grid and the ALU grid) instead
// of writing each one out by hand. The x==3 block (0xC0-0xFF) diverges
// from the classic Z80 table enough on this chip (LDH, ADD SP,e, JP (HL),
// no EX/IN/OUT/DJNZ group) that it is its own explicit switch, still built
// from the same shared helpers.
func (c *CPU) executePrimary(opcode uint8) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.executeBlockX0(opcode, y, z, p, q)
	case 1:
		return c.executeBlockX1(y, z)
	case 2:
		return c.executeBlockX2(y, z)
	default:
		return c.executeBlockX3(opcode, y)
	}
}

func (c *CPU) executeBlockX0(opcode, y, z, p, q uint8) int {
	switch z {
	case 0:
		return c.x0z0(y)
	case 1:
		if q == 0 {
			c.setReg16(p, c.readImmediateWord())
			return 12
		}
		c.addHL(c.getReg16(p))
		return 8
	case 2:
		return c.x0z2(p, q)
	case 3:
		if q == 0 {
			c.setReg16(p, c.getReg16(p)+1)
		} else {
			c.setReg16(p, c.getReg16(p)-1)
		}
		return 8
	case 4:
		c.incR8(y)
		if y == 6 {
			return 12
		}
		return 4
	case 5:
		c.decR8(y)
		if y == 6 {
			return 12
		}
		return 4
	case 6:
		c.setR8(y, c.readImmediate())
		if y == 6 {
			return 12
		}
		return 8
	default: // z == 7
		return c.x0z7(y)
	}
}

func (c *CPU) x0z0(y uint8) int {
	switch y {
	case 0: // NOP
		return 4
	case 1: // LD (nn),SP
		addr := c.readImmediateWord()
		c.busWrite(addr, uint8(c.sp))
		c.busWrite(addr+1, uint8(c.sp>>8))
		return 20
	case 2: // STOP
		c.stopped = true
		c.halted = true
		c.readImmediate() // STOP is followed by a padding byte
		return 4
	case 3: // JR d
		c.jumpRelative(c.readSignedImmediate())
		return 12
	default: // 4..7: JR cc,d
		offset := c.readSignedImmediate()
		if c.condition(y - 4) {
			c.jumpRelative(offset)
			return 12
		}
		return 8
	}
}

func (c *CPU) x0z2(p, q uint8) int {
	addr := c.indirectAddrForP(p)
	if q == 0 {
		c.busWrite(addr, c.a)
	} else {
		c.a = c.busRead(addr)
	}
	if p == 2 {
		c.setHL(c.getHL() + 1)
	} else if p == 3 {
		c.setHL(c.getHL() - 1)
	}
	return 8
}

func (c *CPU) indirectAddrForP(p uint8) uint16 {
	switch p {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	default: // 2 and 3 both address HL; the increment/decrement happens after the access
		return c.getHL()
	}
}

func (c *CPU) x0z7(y uint8) int {
	switch y {
	case 0:
		c.a = c.rlc(c.a, false)
	case 1:
		c.a = c.rrc(c.a, false)
	case 2:
		c.a = c.rl(c.a, false)
	case 3:
		c.a = c.rr(c.a, false)
	case 4:
		c.daa()
	case 5: // CPL
		c.a = ^c.a
		c.setFlag(flagN)
		c.setFlag(flagH)
	case 6: // SCF
		c.resetFlag(flagN)
		c.resetFlag(flagH)
		c.setFlag(flagC)
	case 7: // CCF
		c.resetFlag(flagN)
		c.resetFlag(flagH)
		c.setFlagTo(flagC, !c.isSet(flagC))
	}
	return 4
}

// executeBlockX1 covers 0x40-0x7F: the LD r,r' grid, with 0x76 (which would
// be LD (HL),(HL)) repurposed as HALT.
func (c *CPU) executeBlockX1(y, z uint8) int {
	if y == 6 && z == 6 {
		c.executeHalt()
		return 4
	}
	c.setR8(y, c.getR8(z))
	if y == 6 || z == 6 {
		return 8
	}
	return 4
}

// executeHalt implements HALT, including the documented hardware quirk: if
// IME is off and an interrupt is already pending, the CPU never actually
// stops, it just mis-decodes the following byte once (haltBug).
func (c *CPU) executeHalt() {
	if !c.irq.ime && c.irq.pending() != 0 {
		c.haltBug = true
		return
	}
	c.halted = true
}

// executeBlockX2 covers 0x80-0xBF: ADD/ADC/SUB/SBC/AND/XOR/OR/CP A,r.
func (c *CPU) executeBlockX2(y, z uint8) int {
	c.aluOp(y, c.getR8(z))
	if z == 6 {
		return 8
	}
	return 4
}

// executeBlockX3 covers 0xC0-0xFF.
func (c *CPU) executeBlockX3(opcode, y uint8) int {
	if isIllegal(opcode) {
		return c.illegalOpcode(opcode)
	}

	switch opcode {
	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		if c.condition(y) {
			c.pc = c.popWord()
			return 20
		}
		return 8
	case 0xC1, 0xD1, 0xE1, 0xF1: // POP rr
		c.setReg16Stack(y>>1, c.popWord())
		return 12
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,nn
		addr := c.readImmediateWord()
		if c.condition(y) {
			c.pc = addr
			return 16
		}
		return 12
	case 0xC3: // JP nn
		c.pc = c.readImmediateWord()
		return 16
	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,nn
		addr := c.readImmediateWord()
		if c.condition(y) {
			c.pushWord(c.pc)
			c.pc = addr
			return 24
		}
		return 12
	case 0xC5, 0xD5, 0xE5, 0xF5: // PUSH rr
		c.pushWord(c.getReg16Stack(y >> 1))
		return 16
	case 0xC6: // ADD A,n
		c.add(c.readImmediate())
		return 8
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST
		c.pushWord(c.pc)
		c.pc = uint16(y) * 8
		return 16
	case 0xC9: // RET
		c.pc = c.popWord()
		return 16
	case 0xCD: // CALL nn
		addr := c.readImmediateWord()
		c.pushWord(c.pc)
		c.pc = addr
		return 24
	case 0xCE: // ADC A,n
		c.adc(c.readImmediate())
		return 8
	case 0xD6: // SUB n
		c.sub(c.readImmediate())
		return 8
	case 0xD9: // RETI
		c.pc = c.popWord()
		c.irq.enableNow()
		return 16
	case 0xDE: // SBC A,n
		c.sbc(c.readImmediate())
		return 8
	case 0xE0: // LDH (n),A
		c.busWrite(0xFF00+uint16(c.readImmediate()), c.a)
		return 12
	case 0xE2: // LD (C),A
		c.busWrite(0xFF00+uint16(c.c), c.a)
		return 8
	case 0xE6: // AND n
		c.and(c.readImmediate())
		return 8
	case 0xE8: // ADD SP,e
		c.sp = c.addSPSigned(c.readSignedImmediate())
		return 16
	case 0xE9: // JP (HL)
		c.pc = c.getHL()
		return 4
	case 0xEA: // LD (nn),A
		c.busWrite(c.readImmediateWord(), c.a)
		return 16
	case 0xEE: // XOR n
		c.xor(c.readImmediate())
		return 8
	case 0xF0: // LDH A,(n)
		c.a = c.busRead(0xFF00 + uint16(c.readImmediate()))
		return 12
	case 0xF2: // LD A,(C)
		c.a = c.busRead(0xFF00 + uint16(c.c))
		return 8
	case 0xF3: // DI
		c.irq.disableNow()
		return 4
	case 0xF6: // OR n
		c.or(c.readImmediate())
		return 8
	case 0xF8: // LD HL,SP+e
		c.setHL(c.addSPSigned(c.readSignedImmediate()))
		return 12
	case 0xF9: // LD SP,HL
		c.sp = c.getHL()
		return 8
	case 0xFA: // LD A,(nn)
		c.a = c.busRead(c.readImmediateWord())
		return 16
	case 0xFB: // EI
		c.irq.requestEnable()
		return 4
	case 0xFE: // CP n
		c.cp(c.readImmediate())
		return 8
	default:
		return c.illegalOpcode(opcode)
	}
}

// condition evaluates cc[idx]: 0=NZ,1=Z,2=NC,3=C.
func (c *CPU) condition(idx uint8) bool {
	switch idx {
	case 0:
		return !c.isSet(flagZ)
	case 1:
		return c.isSet(flagZ)
	case 2:
		return !c.isSet(flagC)
	default:
		return c.isSet(flagC)
	}
}

func (c *CPU) jumpRelative(offset int8) {
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) readImmediate() uint8 {
	v := c.busRead(c.pc)
	c.pc++
	return v
}

func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return uint16(high)<<8 | uint16(low)
}
