package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockProvider is a test double that overrides a single address, always
// refusing access to it (simulating e.g. OAM locked during DMA).
type lockProvider struct {
	NoOverride
	addr uint16
}

func (l *lockProvider) ReadOverride(addr uint16, _ Source) (byte, bool) {
	if addr == l.addr {
		return 0xFF, true
	}
	return 0, false
}

func (l *lockProvider) WriteOverride(addr uint16, _ byte, _ Source) bool {
	return addr == l.addr
}

func (l *lockProvider) Read(uint16, Source) (byte, bool) { return 0, false }

func (l *lockProvider) Write(uint16, byte, Source) bool { return false }

func TestReadWriteRoundTrip(t *testing.T) {
	b := New()
	b.Register(NewRAM(0xC000, 0xDFFF))

	require.NoError(t, b.Write(0xC010, 0x42, SourceCPU))
	v, err := b.Read(0xC010, SourceCPU)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)
}

func TestNoHandler(t *testing.T) {
	b := New()
	_, err := b.Read(0x1234, SourceCPU)
	require.Error(t, err)

	var nhe *NoHandlerError
	assert.True(t, errors.As(err, &nhe))
	assert.Equal(t, uint16(0x1234), nhe.Addr)
	assert.False(t, nhe.IsWrite)
}

func TestFirstMatchWins(t *testing.T) {
	b := New()
	low := NewRAM(0x0000, 0xFFFF)
	high := NewRAM(0x0000, 0xFFFF)
	require.True(t, low.Write(0x10, 0x01, SourceCPU))
	require.True(t, high.Write(0x10, 0x02, SourceCPU))
	b.Register(low)
	b.Register(high)

	v, err := b.Read(0x10, SourceCPU)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), v, "first registered provider should win")
}

func TestOverrideTakesPrecedence(t *testing.T) {
	b := New()
	ram := NewRAM(0x0000, 0xFFFF)
	b.Register(ram)
	b.Register(&lockProvider{addr: 0x8000})

	v, err := b.Read(0x8000, SourceCPU)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), v)

	err = b.Write(0x8000, 0x99, SourceCPU)
	require.NoError(t, err)
	// the write was swallowed by the override, the RAM underneath is untouched
	v, handled := ram.Read(0x8000, SourceCPU)
	require.True(t, handled)
	assert.Equal(t, byte(0x00), v)
}

func TestUnregister(t *testing.T) {
	b := New()
	r := NewRAM(0x0000, 0xFFFF)
	b.Register(r)
	b.Unregister(r)

	_, err := b.Read(0x10, SourceCPU)
	assert.Error(t, err)
}

func TestInterruptLines(t *testing.T) {
	b := New()
	assert.Equal(t, uint8(0), b.InterruptLines())

	b.RequestInterrupt(VBlank)
	b.RequestInterrupt(VBlank) // idempotent
	assert.Equal(t, uint8(0x01), b.InterruptLines())

	b.RequestInterrupt(Timer)
	assert.Equal(t, uint8(0x05), b.InterruptLines())

	b.ClearInterruptLine(VBlank)
	assert.Equal(t, uint8(0x04), b.InterruptLines())

	b.SetInterruptLines(0x1F)
	assert.Equal(t, uint8(0x1F), b.InterruptLines())
}

func TestRAMOutOfRangeIsUnhandled(t *testing.T) {
	r := NewRAM(0xC000, 0xDFFF)
	_, handled := r.Read(0x0000, SourceCPU)
	assert.False(t, handled)
}

func TestROMIsReadOnly(t *testing.T) {
	rom := NewROM(0x0000, 0x7FFF, []byte{0xAA, 0xBB})
	v, handled := rom.Read(0x0000, SourceCPU)
	require.True(t, handled)
	assert.Equal(t, byte(0xAA), v)

	handled = rom.Write(0x0000, 0x00, SourceCPU)
	require.True(t, handled)
	v, _ = rom.Read(0x0000, SourceCPU)
	assert.Equal(t, byte(0xAA), v, "writes to ROM must be dropped")
}
