package ppu

// fetcherState is one of the three states in §4.4's state machine.
type fetcherState int

const (
	fetchTileMap fetcherState = iota
	fetchTileData
	pushFIFO
)

// fetcher is the background/window tile fetcher driving the FIFO. Per-state
// dot budgets are {2, 4, variable}; PushFIFO only proceeds once the FIFO it
// feeds has fully drained.
type fetcher struct {
	state      fetcherState
	dotsInTick int
	fetcherX   int

	tileNumber byte
	lowPlane   byte
	highPlane  byte
}

func newFetcher() fetcher {
	return fetcher{state: fetchTileMap}
}

// tickFetcher advances the fetcher by one dot. It is called every dot of
// Drawing once the scanline's one-time 6-dot warm-up has elapsed.
func (p *PPU) tickFetcher() {
	f := &p.fetcher
	switch f.state {
	case fetchTileMap:
		f.dotsInTick++
		if f.dotsInTick >= 2 {
			p.doFetchTileMap()
			f.dotsInTick = 0
			f.state = fetchTileData
		}
	case fetchTileData:
		f.dotsInTick++
		if f.dotsInTick >= 4 {
			p.doFetchTileData()
			f.dotsInTick = 0
			f.state = pushFIFO
		}
	case pushFIFO:
		if p.fifo.empty() {
			p.doPushFIFO()
			f.fetcherX++
			f.state = fetchTileMap
		}
	}
}

// doFetchTileMap reads the tile-number byte for the current fetcherX,
// consulting the window tile map instead of the background one once the
// scanline has crossed into the window (see SPEC_FULL.md §4.4 window note).
// A VRAM read blocked against the CPU never blocks the PPU's own fetcher:
// this reads the backing array directly, not through the bus.
func (p *PPU) doFetchTileMap() {
	f := &p.fetcher

	var mapBase uint16
	var x, y int
	if p.usingWindow {
		mapBase = p.windowTileMapArea()
		x = f.fetcherX % 32
		y = p.windowLine % 256
	} else {
		mapBase = p.bgTileMapArea()
		x = (int(p.scx)/8 + f.fetcherX) % 32
		y = (int(p.scy) + int(p.ly)) % 256
	}

	offset := (32*(y/8) + x) % 1024
	f.tileNumber = p.readVRAM(mapBase + uint16(offset))
}

// doFetchTileData reads the two bitplane bytes for the tile row selected by
// doFetchTileMap, honoring LCDC's signed/unsigned tile-data addressing mode.
func (p *PPU) doFetchTileData() {
	f := &p.fetcher

	var base uint16
	if p.bgWindowTileDataUnsigned() {
		base = 0x8000 + uint16(f.tileNumber)*16
	} else {
		base = uint16(int32(0x9000) + int32(int8(f.tileNumber))*16)
	}

	row := (int(p.scy) + int(p.ly)) % 8
	if p.usingWindow {
		row = p.windowLine % 8
	}

	f.lowPlane = p.readVRAM(base + uint16(row)*2)
	f.highPlane = p.readVRAM(base + uint16(row)*2 + 1)
}

// doPushFIFO interleaves the two bitplanes MSB to LSB into 8 pixels and
// pushes them onto the FIFO; it only runs once the FIFO has fully drained.
func (p *PPU) doPushFIFO() {
	f := &p.fetcher
	for i := 7; i >= 0; i-- {
		lo := (f.lowPlane >> uint(i)) & 1
		hi := (f.highPlane >> uint(i)) & 1
		p.fifo.push(pixel{colorIndex: (hi << 1) | lo})
	}
}

func (p *PPU) readVRAM(addr uint16) byte {
	return p.vram[addr-0x8000]
}
