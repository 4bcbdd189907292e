package bus

// RAM is a trivial Provider covering a contiguous, inclusive [Low, High]
// address window with a flat byte slice. It has no business logic of its
// own: work RAM, high RAM and (for the demo command only) a flat ROM image
// are all "simple byte arrays" per the spec and are out of scope as
// components, but the bus still needs *something* registered at those
// addresses to dispatch to in an end-to-end run.
type RAM struct {
	NoOverride
	Low, High uint16
	data      []byte
	readOnly  bool
}

// NewRAM allocates a writable RAM provider covering [low, high] inclusive.
func NewRAM(low, high uint16) *RAM {
	return &RAM{Low: low, High: high, data: make([]byte, int(high)-int(low)+1)}
}

// NewROM allocates a read-only provider covering [low, high] inclusive,
// pre-populated with the given image (truncated or zero-padded to fit).
func NewROM(low, high uint16, image []byte) *RAM {
	size := int(high) - int(low) + 1
	data := make([]byte, size)
	copy(data, image)
	return &RAM{Low: low, High: high, data: data, readOnly: true}
}

func (r *RAM) inRange(addr uint16) bool {
	return addr >= r.Low && addr <= r.High
}

func (r *RAM) Read(addr uint16, _ Source) (byte, bool) {
	if !r.inRange(addr) {
		return 0, false
	}
	return r.data[addr-r.Low], true
}

func (r *RAM) Write(addr uint16, value byte, _ Source) bool {
	if !r.inRange(addr) {
		return false
	}
	if !r.readOnly {
		r.data[addr-r.Low] = value
	}
	return true
}
