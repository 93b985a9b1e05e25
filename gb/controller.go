package gb

// Button indexes Buttons, true means pressed.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// Buttons is the state of the eight joypad buttons.
type Buttons [8]bool

type joypad struct {
	buttons Buttons
}

// set replaces the button state and reports whether any button went down.
func (j *joypad) set(buttons Buttons) bool {
	pressed := false
	for i, down := range buttons {
		if down && !j.buttons[i] {
			pressed = true
		}
	}
	j.buttons = buttons
	return pressed
}

// read returns P1 for the select lines in p1. A selected line reads 0 for a
// pressed button.
// bit       3     2      1    0
// P1.4=0    Down  Up     Left Right
// P1.5=0    Start Select B    A
func (j *joypad) read(p1 byte) byte {
	lines := byte(0x0F)
	if p1&0x10 == 0 {
		for i, btn := range []Button{ButtonRight, ButtonLeft, ButtonUp, ButtonDown} {
			if j.buttons[btn] {
				lines &^= 1 << i
			}
		}
	}
	if p1&0x20 == 0 {
		for i, btn := range []Button{ButtonA, ButtonB, ButtonSelect, ButtonStart} {
			if j.buttons[btn] {
				lines &^= 1 << i
			}
		}
	}
	return 0xC0 | p1&0x30 | lines
}
