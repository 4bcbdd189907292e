package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/lr35902core/bus"
)

// newTestCPU wires a CPU to a bus backed by flat RAM across the whole
// address space, which is enough to drive the decode/execute tests below
// without a real cartridge.
func newTestCPU(t *testing.T) (*CPU, *bus.Bus) {
	t.Helper()
	b := bus.New()
	b.Register(bus.NewRAM(0x0000, 0xFFFF))
	c := New(b)
	return c, b
}

func loadProgram(t *testing.T, b *bus.Bus, addr uint16, bytes ...uint8) {
	t.Helper()
	for i, v := range bytes {
		require.NoError(t, b.Write(addr+uint16(i), v, bus.SourceCPU))
	}
}

func TestBootSequenceNOP(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetAF(0x01B0)
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	c.SetSP(0xFFFE)
	c.SetPC(0x0100)
	loadProgram(t, b, 0x0100, 0x00) // NOP

	for i := 0; i < 4; i++ {
		c.Tick()
	}

	assert.Equal(t, uint16(0x0101), c.GetPC())
	assert.Equal(t, uint16(0x01B0), c.GetAF())
	assert.Equal(t, uint16(0x0013), c.GetBC())
}

func TestFlagRegisterLowNibbleAlwaysZero(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0x0100)
	// ADD A,n a bunch of times; F's low nibble must never be observed set.
	loadProgram(t, b, 0x0100, 0xC6, 0x01, 0xC6, 0xFF, 0xC6, 0x80)
	for i := 0; i < 3; i++ {
		c.Step()
		assert.Zero(t, c.GetF()&0x0F)
	}
}

func TestPushPopPreservesRegisterPair(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0x0100)
	c.SetBC(0x1234)
	c.SetSP(0xFFFE)
	loadProgram(t, b, 0x0100, 0xC5 /* PUSH BC */, 0xD1 /* POP DE */)

	c.Step()
	c.Step()

	assert.Equal(t, uint16(0x1234), c.GetDE())
	assert.Equal(t, uint16(0xFFFE), c.GetSP())
}

func TestPushPopAFMasksLowNibble(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0x0100)
	c.SetSP(0xFFFE)
	c.SetAF(0x1234) // low nibble 0x4 must be dropped on the way in already
	loadProgram(t, b, 0x0100, 0xF5 /* PUSH AF */, 0xF1 /* POP AF */)

	before := c.GetAF()
	c.Step()
	c.Step()

	assert.Equal(t, before, c.GetAF())
	assert.Zero(t, c.GetAF()&0x0F)
}

func TestAddThenSubRestoresA(t *testing.T) {
	c, b := newTestCPU(t)
	for a := 0; a <= 0xFF; a += 0x11 {
		for v := 0; v <= 0xFF; v += 0x33 {
			c.SetPC(0x0100)
			c.a = uint8(a)
			loadProgram(t, b, 0x0100, 0xC6, uint8(v), 0xD6, uint8(v))
			c.Step()
			c.Step()
			assert.Equal(t, uint8(a), c.a, "a=%d v=%d", a, v)
		}
	}
}

func TestIncDecBoundaryCases(t *testing.T) {
	c, _ := newTestCPU(t)
	c.b = 0xFF
	c.incR8(0)
	assert.Equal(t, uint8(0x00), c.b)
	assert.True(t, c.isSet(flagZ))
	assert.True(t, c.isSet(flagH))
	assert.False(t, c.isSet(flagN))

	c.b = 0x01
	c.decR8(0)
	assert.Equal(t, uint8(0x00), c.b)
	assert.True(t, c.isSet(flagZ))
	assert.True(t, c.isSet(flagN))
	assert.False(t, c.isSet(flagH))
}

func TestAddHLOverflow(t *testing.T) {
	c, _ := newTestCPU(t)
	c.setHL(0x8000)
	c.addHL(0x8000)
	assert.Equal(t, uint16(0x0000), c.getHL())
	assert.True(t, c.isSet(flagC))
}

func TestSwapIsInvolution(t *testing.T) {
	c, _ := newTestCPU(t)
	for _, v := range []uint8{0x00, 0xAB, 0xF0, 0x0F, 0xFF} {
		once := c.swap(v)
		twice := c.swap(once)
		assert.Equal(t, v, twice)
	}
}

func TestRLCThenRRCIsIdentity(t *testing.T) {
	c, _ := newTestCPU(t)
	for _, v := range []uint8{0x00, 0x81, 0x55, 0xAA, 0xFF} {
		rotated := c.rlc(v, true)
		back := c.rrc(rotated, true)
		assert.Equal(t, v, back)
	}
}

func TestCPLIsInvolution(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0x0100)
	c.a = 0x5A
	loadProgram(t, b, 0x0100, 0x2F, 0x2F) // CPL, CPL
	c.Step()
	assert.True(t, c.isSet(flagN))
	assert.True(t, c.isSet(flagH))
	c.Step()
	assert.Equal(t, uint8(0x5A), c.a)
	assert.True(t, c.isSet(flagN))
	assert.True(t, c.isSet(flagH))
}

func TestDAAAfterAddition(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0x0100)
	c.a = 0x15
	c.b = 0x27
	loadProgram(t, b, 0x0100, 0x80 /* ADD A,B */, 0x27 /* DAA */)

	c.Step()
	assert.Equal(t, uint8(0x3C), c.a)
	assert.False(t, c.isSet(flagH))

	c.Step()
	assert.Equal(t, uint8(0x42), c.a)
	assert.False(t, c.isSet(flagZ))
	assert.False(t, c.isSet(flagH))
	assert.False(t, c.isSet(flagC))
}

func TestDAAWithCarry(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0x0100)
	c.a = 0x90
	c.b = 0x80
	loadProgram(t, b, 0x0100, 0x80, 0x27)

	c.Step()
	assert.Equal(t, uint8(0x10), c.a)
	assert.True(t, c.isSet(flagC))

	c.Step()
	assert.Equal(t, uint8(0x70), c.a)
	assert.True(t, c.isSet(flagC))
	assert.False(t, c.isSet(flagZ))
}

func TestIllegalOpcodeContinuesAtNextByte(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0x0100)
	loadProgram(t, b, 0x0100, 0xD3, 0x00) // illegal, then NOP
	c.Step()
	require.Error(t, c.LastError())
	var ioe *IllegalOpcodeError
	require.ErrorAs(t, c.LastError(), &ioe)
	assert.Equal(t, uint16(0x0100), ioe.PC)
	assert.Equal(t, uint16(0x0101), c.GetPC())

	c.Step()
	assert.Equal(t, uint16(0x0102), c.GetPC())
}

func TestPCAndSPWrap(t *testing.T) {
	c, b := newTestCPU(t)
	c.SetPC(0xFFFF)
	loadProgram(t, b, 0xFFFF, 0x00) // NOP, PC wraps to 0 after fetch
	c.Step()
	assert.Equal(t, uint16(0x0000), c.GetPC())

	c.SetSP(0x0000)
	c.pushWord(0xABCD)
	assert.Equal(t, uint16(0xFFFE), c.GetSP())
}
