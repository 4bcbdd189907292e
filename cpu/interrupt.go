package cpu

import "github.com/valerio/lr35902core/bus"

// interruptController holds IME and the delayed-enable countdown (§4.2).
// IE is owned here directly; IF is a thin view over the bus's 5-bit
// interrupt-line vector, which is also the natural home for "setting a
// line high is idempotent" (see DESIGN.md for why IF isn't duplicated
// into a second byte here).
type interruptController struct {
	bus *bus.Bus

	ime           bool
	delayedEnable uint8 // one of {0,1,2}
	ie            uint8
}

// pending computes IF & IE & 0x1F.
func (ic *interruptController) pending() uint8 {
	return ic.bus.InterruptLines() & ic.ie & 0x1F
}

// tickBoundary runs at each instruction boundary: the delayed-enable
// countdown set by EI decrements, and IME flips true the instruction after
// EI retires, not at EI's own retirement.
func (ic *interruptController) tickBoundary() {
	if ic.delayedEnable == 0 {
		return
	}
	ic.delayedEnable--
	if ic.delayedEnable == 0 {
		ic.ime = true
	}
}

// requestEnable implements EI: IME becomes true after the *next*
// instruction retires.
func (ic *interruptController) requestEnable() {
	ic.delayedEnable = 2
}

// disableNow implements DI: IME clears immediately and any pending
// delayed enable is cancelled, so a DI right after EI (before the next
// instruction boundary fires) wins.
func (ic *interruptController) disableNow() {
	ic.ime = false
	ic.delayedEnable = 0
}

// enableNow implements RETI's non-delayed enable.
func (ic *interruptController) enableNow() {
	ic.ime = true
	ic.delayedEnable = 0
}

// ifieProvider exposes IF (via the bus's interrupt-line vector) and IE (the
// controller's own byte) at their fixed addresses. It is registered by
// cpu.New so the CPU never needs a special-cased path for these two
// addresses in its bus access helpers.
type ifieProvider struct {
	bus.NoOverride
	ctrl *interruptController
}

const (
	addrIF uint16 = 0xFF0F
	addrIE uint16 = 0xFFFF
)

func (p *ifieProvider) Read(addr uint16, _ bus.Source) (byte, bool) {
	switch addr {
	case addrIF:
		// unused bits read back high on hardware
		return p.ctrl.bus.InterruptLines() | 0xE0, true
	case addrIE:
		return p.ctrl.ie, true
	default:
		return 0, false
	}
}

func (p *ifieProvider) Write(addr uint16, value byte, _ bus.Source) bool {
	switch addr {
	case addrIF:
		p.ctrl.bus.SetInterruptLines(value)
		return true
	case addrIE:
		p.ctrl.ie = value
		return true
	default:
		return false
	}
}
