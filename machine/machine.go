// Package machine wires the bus, CPU and PPU together and drives the
// master per-dot tick loop described in §5: within one dot, every
// component ticks exactly once, in a fixed order.
package machine

import (
	"context"

	"github.com/valerio/lr35902core/bus"
	"github.com/valerio/lr35902core/cpu"
	"github.com/valerio/lr35902core/ppu"
)

// DotsPerFrame is the fixed frame length: 154 scanlines * 456 dots.
const DotsPerFrame = 70224

// Machine owns the bus and its two clocked components. The interrupt
// controller is not a separate field: it lives inside CPU and its
// instruction-boundary bookkeeping happens as part of cpu.CPU.Tick, not as
// a distinct call in the loop below.
type Machine struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	PPU *ppu.PPU

	dotCount uint64
}

// New wires a fresh bus, CPU and PPU together. workRAM and highRAM are
// registered as bus.RAM providers so the machine is runnable end-to-end
// without a cartridge; callers add their own cartridge/mapper provider
// before the first Tick (see cmd/lr35902core for a flat-ROM example).
func New() *Machine {
	b := bus.New()
	b.Register(bus.NewRAM(0xC000, 0xDFFF)) // work RAM
	b.Register(bus.NewRAM(0xFF80, 0xFFFE)) // high RAM
	b.Register(bus.NewRAM(0xFE00, 0xFE9F)) // OAM: storage only, sprites out of scope

	p := ppu.New(b)
	c := cpu.New(b)

	return &Machine{Bus: b, CPU: c, PPU: p}
}

// RegisterCartridge adds a provider (e.g. a ROM image) to the bus. It is
// consulted after the built-in RAM windows registered by New, which only
// matters if its address range overlaps one of them.
func (m *Machine) RegisterCartridge(p bus.Provider) {
	m.Bus.Register(p)
}

// SetFrameSink installs the consumer notified once per frame.
func (m *Machine) SetFrameSink(sink ppu.FrameSink) {
	m.PPU.SetFrameSink(sink)
}

// Tick advances every component by exactly one dot, in the normative order:
// CPU (which folds in its own interrupt-controller bookkeeping), then PPU.
// Per §7, a bus.NoHandlerError hit by the CPU is fatal at the core level and
// is returned here rather than swallowed; illegal opcodes and VRAM-lock
// fallbacks are not (see cpu.CPU.LastError for the former).
func (m *Machine) Tick() error {
	m.CPU.Tick()
	m.PPU.Tick()
	m.dotCount++
	if err := m.CPU.FatalError(); err != nil {
		return err
	}
	return nil
}

// Dots returns the total number of dots ticked so far.
func (m *Machine) Dots() uint64 { return m.dotCount }

// Run ticks the machine exactly n times, checking ctx between dots for
// cooperative cancellation. Per §5, cancellation is clean: any
// partially-accumulated CPU stall count is preserved in CPU state and
// resumes correctly on the next Run call.
//
// Illegal opcodes are non-fatal (cpu.CPU logs and records them, retrievable
// via m.CPU.LastError). A bus.NoHandlerError hit by the CPU, by contrast, is
// fatal per §7 and stops the run immediately, returned from here as-is so
// callers can errors.As it back to *bus.NoHandlerError.
func (m *Machine) Run(ctx context.Context, n uint64) error {
	for i := uint64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunFrames runs exactly frames*DotsPerFrame dots.
func (m *Machine) RunFrames(ctx context.Context, frames int) error {
	return m.Run(ctx, uint64(frames)*DotsPerFrame)
}
