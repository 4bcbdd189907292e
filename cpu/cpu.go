// Package cpu implements instruction decode/execute for the Sharp LR35902:
// the 256 primary opcodes, the 256 CB-prefixed opcodes, the flag model and
// the interrupt-servicing state machine. The CPU consumes a bus.Bus by
// reference and registers its own IF/IE provider on it at construction
// time, per the "component wiring" design note: the bus owns no
// components, the interrupt controller lives inside the CPU.
package cpu

import (
	"log/slog"

	"github.com/valerio/lr35902core/bit"
	"github.com/valerio/lr35902core/bus"
)

// Flag is one of the four flags packed into the high nibble of F.
type Flag uint8

const (
	flagZ Flag = 0x80
	flagN Flag = 0x40
	flagH Flag = 0x20
	flagC Flag = 0x10
)

const baseInterruptVector uint16 = 0x0040

// CPU holds all LR35902 register and scheduling state. Zero value is not
// usable; construct with New.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	bus *bus.Bus
	irq interruptController

	cyclesRemaining int
	tickCounter     uint64

	halted  bool
	stopped bool

	// haltBug: set when HALT executes with IME=0 and a pending interrupt.
	// The next opcode fetch re-reads the same PC for its first operand
	// byte instead of advancing past the opcode, matching the hardware
	// quirk; cleared by that same fetch.
	haltBug bool

	currentOpcode uint16 // low byte is the opcode, high byte 0xCB if prefixed
	lastErr       error  // last IllegalOpcodeError, if any; non-fatal
	fatalErr      error  // first bus.NoHandlerError hit by the CPU, if any; fatal
}

// New returns a CPU wired to bus, with the interrupt controller's IF/IE
// provider already registered, and registers initialized to the documented
// post-boot-ROM state.
func New(b *bus.Bus) *CPU {
	c := &CPU{bus: b}
	c.irq.bus = b
	b.Register(&ifieProvider{ctrl: &c.irq})

	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100

	return c
}

// Tick advances the CPU by exactly one dot. It is the fetch/execute loop
// body described in the spec: a stall counter absorbs the instruction's
// cost, and fetch/interrupt-service only happen once it reaches zero.
func (c *CPU) Tick() {
	c.tickCounter++

	if c.cyclesRemaining > 0 {
		c.cyclesRemaining--
		return
	}

	pending := c.irq.pending()

	if c.halted {
		if pending != 0 {
			c.halted = false
		} else {
			c.cyclesRemaining = 3
			return
		}
	}

	if c.irq.ime && pending != 0 {
		c.serviceInterrupt(pending)
		c.cyclesRemaining = 19
		return
	}

	opcode := c.fetch()
	cycles := c.execute(opcode)
	c.cyclesRemaining = cycles - 1

	c.irq.tickBoundary()
}

// Step advances to the end of the current instruction: any partially
// consumed cyclesRemaining is collapsed to zero (counted against
// tickCounter) and then exactly one fetch/execute cycle runs.
func (c *CPU) Step() {
	if c.cyclesRemaining > 0 {
		c.tickCounter += uint64(c.cyclesRemaining)
		c.cyclesRemaining = 0
	}
	c.Tick()
}

// fetch reads the opcode byte at PC and handles the 0xCB prefix. When the
// previous instruction set haltBug, the increment that would normally
// follow this opcode byte is skipped, which is precisely the hardware
// quirk: the next byte is decoded twice, once as (part of) this opcode's
// operand stream and once as the following instruction's opcode.
func (c *CPU) fetch() uint16 {
	op := c.busRead(c.pc)
	skippedInc := c.haltBug
	if !skippedInc {
		c.pc++
	}

	if op == 0xCB {
		second := c.busRead(c.pc)
		c.pc++
		c.currentOpcode = bit.Combine(0xCB, second)
	} else {
		c.currentOpcode = uint16(op)
	}

	if skippedInc {
		c.haltBug = false
	}
	return c.currentOpcode
}

func (c *CPU) execute(opcode uint16) int {
	if bit.High(opcode) == 0xCB {
		return c.executeCB(bit.Low(opcode))
	}
	return c.executePrimary(bit.Low(opcode))
}

// serviceInterrupt implements §4.3: clear IF[i], disable IME, push PC,
// jump to the vector. i is the lowest set bit of pending.
func (c *CPU) serviceInterrupt(pending uint8) {
	var i uint8
	for i = 0; i < 5; i++ {
		if bit.IsSet(i, pending) {
			break
		}
	}

	c.bus.ClearInterruptLine(bus.Interrupt(i))
	c.irq.ime = false
	c.irq.delayedEnable = 0

	c.pushWord(c.pc)
	c.pc = baseInterruptVector + uint16(i)*8
}

// busRead/busWrite centralize CPU-sourced bus access. Only LockedAddressError
// is degraded in-band (0xFF / dropped write); a VRAM access blocked during
// Drawing never reaches this path, since the PPU's override answers it
// directly with 0xFF. Per §7, NoHandlerError is fatal at the core level and is never
// recovered from here — it is latched onto fatalErr for Tick's caller
// (machine.Machine) to observe and propagate.
func (c *CPU) busRead(addr uint16) uint8 {
	v, err := c.bus.Read(addr, bus.SourceCPU)
	if err == nil {
		return v
	}
	if isLocked(err) {
		return 0xFF
	}
	c.recordFatal(err)
	return 0xFF
}

func (c *CPU) busWrite(addr uint16, value uint8) {
	err := c.bus.Write(addr, value, bus.SourceCPU)
	if err == nil || isLocked(err) {
		return
	}
	c.recordFatal(err)
}

func (c *CPU) recordFatal(err error) {
	if c.fatalErr == nil {
		c.fatalErr = err
	}
	slog.Error("cpu: unhandled bus access, no provider claimed it", "error", err, "pc", c.pc)
}

func isLocked(err error) bool {
	_, ok := err.(*bus.LockedAddressError)
	return ok
}

func (c *CPU) illegalOpcode(opcode uint8) int {
	err := &IllegalOpcodeError{PC: c.pc - 1, Opcode: opcode}
	c.lastErr = err
	slog.Warn("cpu: illegal opcode", "pc", err.PC, "opcode", opcode)
	return 4
}

// LastError returns the most recently recorded IllegalOpcodeError, or nil.
func (c *CPU) LastError() error { return c.lastErr }

// FatalError returns the first bus.NoHandlerError the CPU hit, or nil. Per
// §7, this is the one error class a core component never recovers from;
// machine.Machine.Tick checks this after every CPU tick and propagates it.
func (c *CPU) FatalError() error { return c.fatalErr }

// --- accessors used by tests, debug tooling, and the demo command ---

func (c *CPU) GetA() uint8       { return c.a }
func (c *CPU) GetF() uint8       { return c.f }
func (c *CPU) GetB() uint8       { return c.b }
func (c *CPU) GetC() uint8       { return c.c }
func (c *CPU) GetD() uint8       { return c.d }
func (c *CPU) GetE() uint8       { return c.e }
func (c *CPU) GetH() uint8       { return c.h }
func (c *CPU) GetL() uint8       { return c.l }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetAF() uint16     { return c.getAF() }
func (c *CPU) GetBC() uint16     { return c.getBC() }
func (c *CPU) GetDE() uint16     { return c.getDE() }
func (c *CPU) GetHL() uint16     { return c.getHL() }
func (c *CPU) Cycles() uint64    { return c.tickCounter }
func (c *CPU) IsHalted() bool    { return c.halted }
func (c *CPU) IsStopped() bool   { return c.stopped }
func (c *CPU) IME() bool         { return c.irq.ime }

// SetPC/SetSP are exposed for tests that need to seed a known starting
// state without going through a ROM.
func (c *CPU) SetPC(v uint16) { c.pc = v }
func (c *CPU) SetSP(v uint16) { c.sp = v }
func (c *CPU) SetAF(v uint16) { c.setAF(v) }
func (c *CPU) SetBC(v uint16) { c.setBC(v) }
func (c *CPU) SetDE(v uint16) { c.setDE(v) }
func (c *CPU) SetHL(v uint16) { c.setHL(v) }
