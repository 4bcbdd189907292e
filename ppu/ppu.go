// Package ppu implements the Game Boy pixel-processing unit: the
// background/window fetcher and pixel FIFO (§4.4) and the four-state
// scanline/frame mode manager (§4.5). Sprite compositing and OAM access are
// out of scope (see SPEC_FULL.md §4.4); LCDC's OBJ bits are parsed and
// exposed for a future sprite fetcher but nothing consumes them yet.
package ppu

import "github.com/valerio/lr35902core/bus"

const (
	addrLCDC uint16 = 0xFF40
	addrSTAT uint16 = 0xFF41
	addrSCY  uint16 = 0xFF42
	addrSCX  uint16 = 0xFF43
	addrLY   uint16 = 0xFF44
	addrLYC  uint16 = 0xFF45
	addrWY   uint16 = 0xFF4A
	addrWX   uint16 = 0xFF4B

	vramLow  uint16 = 0x8000
	vramHigh uint16 = 0x9FFF
)

// PPU owns VRAM, the LCDC/STAT/SCX/SCY/LY/LYC/WX/WY registers, the
// fetcher/FIFO and the mode scheduler, and registers itself on the bus as a
// single Provider spanning both the register file and the VRAM window.
type PPU struct {
	bus  *bus.Bus
	sink FrameSink

	vram [vramHigh - vramLow + 1]byte

	lcdc, stat, scy, scx, ly, lyc, wy, wx byte
	statLineHigh                         bool

	mode         mode
	dotsInMode   int
	hblankBudget int

	fetcher          fetcher
	fifo             pixelFIFO
	warmupRemaining  int
	pixelsOutput     int
	usingWindow      bool
	windowLine       int

	framebuffer *FrameBuffer
}

// New returns a PPU registered on b, starting in OAM search at LY=0.
func New(b *bus.Bus) *PPU {
	p := &PPU{
		bus:         b,
		framebuffer: NewFrameBuffer(),
		mode:        modeOAM,
	}
	b.Register(p)
	return p
}

// SetFrameSink installs the consumer notified once per frame at VBlank.
func (p *PPU) SetFrameSink(sink FrameSink) { p.sink = sink }

func (p *PPU) LY() byte  { return p.ly }
func (p *PPU) Mode() int { return int(p.mode) }

func inVRAM(addr uint16) bool { return addr >= vramLow && addr <= vramHigh }

// vramBlocked is true exactly while the fetcher owns VRAM: Drawing mode, per
// §4.4/§5 ("the PPU asserting the VRAM-blocked flag before Drawing executes
// any dot and clearing it after the last Drawing dot").
func (p *PPU) vramBlocked(source bus.Source) bool {
	return p.mode == modeDrawing && source != bus.SourcePPU
}

// ReadOverride/WriteOverride implement the documented VRAM-blocking
// behavior: blocked reads return 0xFF, blocked writes are silently
// dropped, both without ever reaching the normal Read/Write pass.
func (p *PPU) ReadOverride(addr uint16, source bus.Source) (byte, bool) {
	if inVRAM(addr) && p.vramBlocked(source) {
		return 0xFF, true
	}
	return 0, false
}

func (p *PPU) WriteOverride(addr uint16, _ byte, source bus.Source) bool {
	return inVRAM(addr) && p.vramBlocked(source)
}

func (p *PPU) Read(addr uint16, _ bus.Source) (byte, bool) {
	switch {
	case inVRAM(addr):
		return p.vram[addr-vramLow], true
	case addr == addrLCDC:
		return p.lcdc, true
	case addr == addrSTAT:
		return p.composeSTAT(), true
	case addr == addrSCY:
		return p.scy, true
	case addr == addrSCX:
		return p.scx, true
	case addr == addrLY:
		return p.ly, true
	case addr == addrLYC:
		return p.lyc, true
	case addr == addrWY:
		return p.wy, true
	case addr == addrWX:
		return p.wx, true
	default:
		return 0, false
	}
}

func (p *PPU) Write(addr uint16, value byte, _ bus.Source) bool {
	switch {
	case inVRAM(addr):
		p.vram[addr-vramLow] = value
		return true
	case addr == addrLCDC:
		p.lcdc = value
		return true
	case addr == addrSTAT:
		p.stat = value & 0x78 // mode bits and the coincidence flag are read-only
		p.recomputeSTATInterrupt()
		return true
	case addr == addrSCY:
		p.scy = value
		return true
	case addr == addrSCX:
		p.scx = value
		return true
	case addr == addrLY:
		return true // writes to LY are ignored on real hardware
	case addr == addrLYC:
		p.lyc = value
		p.recomputeSTATInterrupt()
		return true
	case addr == addrWY:
		p.wy = value
		return true
	case addr == addrWX:
		p.wx = value
		return true
	default:
		return false
	}
}
