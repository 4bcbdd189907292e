package ppu

// ScreenWidth and ScreenHeight are the visible LCD dimensions in pixels.
const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// GBColor is one of the four shades the DMG palette can resolve a
// colorIndex to, packed as 0xAARRGGBB so a FrameBuffer can be handed
// straight to anything that wants an RGBA buffer.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

var dmgShades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// FrameBuffer holds one committed frame: ScreenWidth*ScreenHeight packed
// colors, row-major.
type FrameBuffer struct {
	buffer [ScreenWidth * ScreenHeight]uint32
}

// NewFrameBuffer returns a frame buffer with every pixel set to WhiteColor.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{}
	for i := range fb.buffer {
		fb.buffer[i] = uint32(WhiteColor)
	}
	return fb
}

func (fb *FrameBuffer) GetPixel(x, y int) uint32 {
	return fb.buffer[y*ScreenWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*ScreenWidth+x] = uint32(color)
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer[:]
}

// FrameSink is notified once per frame, at the VBlank transition.
type FrameSink interface {
	Ready(frame *FrameBuffer)
}
