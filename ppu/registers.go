package ppu

// LCDC (LCD Control) register bit values.
// Bit 7 - LCD enable
// Bit 6 - Window tile map area (0=0x9800, 1=0x9C00)
// Bit 5 - Window enable
// Bit 4 - BG & window tile data area (0=0x8800 signed, 1=0x8000 unsigned)
// Bit 3 - BG tile map area (0=0x9800, 1=0x9C00)
// Bit 2 - OBJ size (0=8x8, 1=8x16)
// Bit 1 - OBJ enable
// Bit 0 - BG/window enable

func (p *PPU) lcdEnable() bool             { return p.lcdc&0x80 != 0 }
func (p *PPU) windowTileMapArea() uint16   { return areaFromBit(p.lcdc, 6) }
func (p *PPU) windowEnable() bool          { return p.lcdc&0x20 != 0 }
func (p *PPU) bgWindowTileDataUnsigned() bool { return p.lcdc&0x10 != 0 }
func (p *PPU) bgTileMapArea() uint16       { return areaFromBit(p.lcdc, 3) }
func (p *PPU) objSize() int {
	if p.lcdc&0x04 != 0 {
		return 16
	}
	return 8
}
func (p *PPU) objEnable() bool { return p.lcdc&0x02 != 0 }
func (p *PPU) bgEnable() bool  { return p.lcdc&0x01 != 0 }

func areaFromBit(lcdc byte, bitIndex uint) uint16 {
	if lcdc&(1<<bitIndex) != 0 {
		return 0x9C00
	}
	return 0x9800
}

// STAT register: bits 0-1 mode (read-only from the CPU side), bit 2 the
// LYC==LY coincidence flag, bits 3-6 the four interrupt source enables,
// bit 7 always reads high.

const (
	statMode0IntBit = 3 // HBlank
	statMode1IntBit = 4 // VBlank
	statMode2IntBit = 5 // OAM
	statLYCIntBit   = 6
)

func (p *PPU) statMode2Enabled() bool { return p.stat&(1<<statMode2IntBit) != 0 }
func (p *PPU) statMode0Enabled() bool { return p.stat&(1<<statMode0IntBit) != 0 }
func (p *PPU) statMode1Enabled() bool { return p.stat&(1<<statMode1IntBit) != 0 }
func (p *PPU) statLYCEnabled() bool   { return p.stat&(1<<statLYCIntBit) != 0 }

func (p *PPU) composeSTAT() byte {
	v := p.stat & 0x78 // keep the four enable bits, bit 7 always reads as set
	v |= 0x80
	v |= byte(p.mode) & 0x03
	if p.ly == p.lyc {
		v |= 0x04
	}
	return v
}
