package ppu

import "github.com/valerio/lr35902core/bus"

// mode is the four-state scanline/frame scheduler of §4.5. Values match the
// bit pattern STAT.mode mirrors: HBlank=0, VBlank=1, OAM=2, Drawing=3.
type mode uint8

const (
	modeHBlank mode = iota
	modeVBlank
	modeOAM
	modeDrawing
)

const (
	oamSearchDots    = 80
	scanlineDots     = 456
	vblankScanlines  = 10
	visibleScanlines = 144
	totalScanlines   = visibleScanlines + vblankScanlines
)

// Tick advances the PPU by one dot: the active mode's own timer, and when
// Drawing is active, the fetcher and FIFO consumer underneath it.
func (p *PPU) Tick() {
	if !p.lcdEnable() {
		return
	}

	switch p.mode {
	case modeOAM:
		p.tickOAMSearch()
	case modeDrawing:
		p.tickDrawingMode()
	case modeHBlank:
		p.tickHBlank()
	case modeVBlank:
		p.tickVBlank()
	}
}

func (p *PPU) tickOAMSearch() {
	p.dotsInMode++
	if p.dotsInMode >= oamSearchDots {
		p.enterDrawing()
	}
}

func (p *PPU) tickDrawingMode() {
	p.dotsInMode++

	if p.warmupRemaining > 0 {
		p.warmupRemaining--
		return
	}

	p.updateWindowLatch()
	p.tickFetcher()

	if px, ok := p.fifo.pop(); ok {
		p.renderPixel(p.pixelsOutput, px)
		p.pixelsOutput++
		if p.pixelsOutput >= ScreenWidth {
			p.enterHBlank(p.dotsInMode)
		}
	}
}

func (p *PPU) tickHBlank() {
	p.dotsInMode++
	if p.dotsInMode >= p.hblankBudget {
		p.ly++
		p.dotsInMode = 0
		p.recomputeSTATInterrupt()
		if p.ly >= visibleScanlines {
			p.enterVBlank()
		} else {
			p.enterOAMSearch()
		}
	}
}

func (p *PPU) tickVBlank() {
	p.dotsInMode++
	if p.dotsInMode >= scanlineDots {
		p.dotsInMode = 0
		p.ly++
		if p.ly >= totalScanlines {
			p.ly = 0
			p.enterOAMSearch()
		} else {
			p.recomputeSTATInterrupt()
		}
	}
}

func (p *PPU) enterOAMSearch() {
	p.mode = modeOAM
	p.dotsInMode = 0
	p.recomputeSTATInterrupt()
}

func (p *PPU) enterDrawing() {
	p.mode = modeDrawing
	p.dotsInMode = 0
	p.fetcher = newFetcher()
	p.fifo.reset()
	p.warmupRemaining = 6
	p.pixelsOutput = 0
	p.usingWindow = false
	p.recomputeSTATInterrupt()
}

func (p *PPU) enterHBlank(usedDrawingDots int) {
	p.mode = modeHBlank
	p.hblankBudget = 376 - usedDrawingDots
	if p.hblankBudget < 0 {
		p.hblankBudget = 0
	}
	p.dotsInMode = 0
	if p.usingWindow {
		p.windowLine++
	}
	p.recomputeSTATInterrupt()
}

func (p *PPU) enterVBlank() {
	p.mode = modeVBlank
	p.dotsInMode = 0
	p.windowLine = 0
	p.bus.RequestInterrupt(bus.VBlank)
	p.recomputeSTATInterrupt()
	if p.sink != nil {
		p.sink.Ready(p.framebuffer)
	}
}

// updateWindowLatch implements the window-activation rule: once
// LCDC.windowEnable is set and the current screen column has reached
// WX-7 with LY>=WY, the fetcher switches to the window tile map for the
// remainder of the scanline.
func (p *PPU) updateWindowLatch() {
	if p.usingWindow || !p.windowEnable() {
		return
	}
	if int(p.ly) < int(p.wy) {
		return
	}
	if p.pixelsOutput+7 < int(p.wx) {
		return
	}
	p.usingWindow = true
	p.fetcher.fetcherX = 0
	p.fifo.reset()
}

// recomputeSTATInterrupt implements §4.5's OR-of-four-masked-conditions
// rule, re-evaluated on every state change or LY increment.
func (p *PPU) recomputeSTATInterrupt() {
	coincidence := p.ly == p.lyc
	fire := (p.statMode0Enabled() && p.mode == modeHBlank) ||
		(p.statMode1Enabled() && p.mode == modeVBlank) ||
		(p.statMode2Enabled() && p.mode == modeOAM) ||
		(p.statLYCEnabled() && coincidence)

	if fire && !p.statLineHigh {
		p.bus.RequestInterrupt(bus.LCDSTAT)
	}
	p.statLineHigh = fire
}

// renderPixel resolves a fetched pixel to a shade and commits it to the
// framebuffer. LCDC.bgEnable cleared forces a blank (white) pixel regardless
// of what the fetcher produced, matching the DMG's "bit 0 off blanks BG and
// window" behavior; the fetcher still runs at its normal pace, only the
// commit is overridden.
func (p *PPU) renderPixel(x int, px pixel) {
	if x < 0 || x >= ScreenWidth || int(p.ly) >= ScreenHeight {
		return
	}
	if !p.bgEnable() {
		p.framebuffer.SetPixel(x, int(p.ly), WhiteColor)
		return
	}
	p.framebuffer.SetPixel(x, int(p.ly), dmgShades[px.colorIndex&0x03])
}
