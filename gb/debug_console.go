package gb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
)

// ErrQuit is returned by DebugConsole.Step after the quit command.
var ErrQuit = errors.New("Quit")

// DebugConsole drives a Console one command at a time for debugging.
// commands:
//   p [banks|sched|irq|lcd|timer|serial|dma]:
//     print.
//   s [n]:
//     dispatch n hardware events.
//   f [n]:
//     run n frames.
//   peek 0xADDR [n]:
//     dump n bytes without side effects.
//   poke 0xADDR 0xDATA:
//     write through the bus.
//   save/load SLOT:
//     keep or restore a save state in memory.
//   viz FILE:
//     write a graphviz dot file of the scheduler and timing units.
//   r:
//     reset.
//   q:
//     quit.
type DebugConsole struct {
	*Console
	in     *bufio.Reader
	out    io.Writer
	events uint64
	slots  map[string][]byte
}

// NewDebugConsole creates a debug console reading commands from in.
func NewDebugConsole(c *Console, in io.Reader, out io.Writer) *DebugConsole {
	return &DebugConsole{
		Console: c,
		in:      bufio.NewReader(in),
		out:     out,
		slots:   map[string][]byte{},
	}
}

// step runs the CPU up to the next event and dispatches it.
func (c *DebugConsole) step() eventID {
	b := c.bus
	if next := b.NextEventTime(); c.cycle < next && !b.Halted() {
		c.cycle = c.cpu.Run(b, c.cycle, next)
	}
	id, _ := b.sched.next()
	c.cycle, _ = b.Event(c.cycle)
	c.events++
	return id
}

func (c *DebugConsole) basePrint() {
	b := c.bus
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "Cycle: %d, dispatched events: %d, frames: %d\n", c.cycle, c.events, b.lcd.frames)
	id, t := b.sched.next()
	fmt.Fprintf(c.out, "Next event: %s at %d\n", id, t)
	fmt.Fprintf(c.out, "IRQ: IF=0x%02x, IE=0x%02x, IME=%v, halted=%v\n", b.irq.ifReg, b.irq.ieReg, b.irq.ime, b.irq.halted)
}

func (c *DebugConsole) printTime(t uint64) string {
	if t == disabledTime {
		return "disabled"
	}
	return strconv.FormatUint(t, 10)
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	b := c.bus
	switch args[1] {
	case "b", "banks":
		t := b.banks
		fmt.Fprintf(c.out, "rom0=%d rom=%d/%d ram=%d/%d flags=%03b wram=%d/%d dma=%s vram=%d\n",
			t.rombank0, t.rombank, t.romBanks, t.rambank, t.ramBanks, t.ramFlags, t.wrambank, t.wramBanks, t.oamDmaSrc, b.vrambank)
		for n := 0; n < 16; n++ {
			fmt.Fprintf(c.out, "  0x%X000: read=%d/%d write=%d/%d\n", n, t.rmem[n].region, t.rmem[n].base, t.wmem[n].region, t.wmem[n].base)
		}
	case "sched":
		for id := eventEnd; id < numEvents; id++ {
			fmt.Fprintf(c.out, "  %-10s %s\n", id, c.printTime(b.sched.time(id)))
		}
	case "irq":
		fmt.Fprintf(c.out, "%+v\n", b.irq)
	case "lcd":
		fmt.Fprintf(c.out, "%+v\n", b.lcd)
	case "timer":
		fmt.Fprintf(c.out, "%+v DIV=0x%02x\n", b.tima, b.readDIV(c.cycle))
	case "serial":
		fmt.Fprintf(c.out, "cnt=%d period=%d out=0x%02x\n", b.serial.cnt, b.serial.period, b.serial.out)
	case "dma":
		fmt.Fprintf(c.out, "%+v\n", b.dma)
	}
}

func parseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("Invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}

func (c *DebugConsole) peekCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("Usage: peek 0xADDR [n]")
	}
	address, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	n := 16
	if len(args) > 2 {
		if n, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("Invalid count %q: %w", args[2], err)
		}
	}
	for i := 0; i < n; i++ {
		a := address + uint16(i)
		if i%16 == 0 {
			if i > 0 {
				fmt.Fprintln(c.out)
			}
			fmt.Fprintf(c.out, "0x%04x:", a)
		}
		fmt.Fprintf(c.out, " %02x", c.bus.Peek(a))
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *DebugConsole) pokeCommand(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("Usage: poke 0xADDR 0xDATA")
	}
	address, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	data, err := strconv.ParseUint(strings.TrimPrefix(args[2], "0x"), 16, 8)
	if err != nil {
		return fmt.Errorf("Invalid data %q: %w", args[2], err)
	}
	c.bus.Write(address, byte(data), c.cycle)
	return nil
}

func (c *DebugConsole) saveCommand(slot string) error {
	buf := make([]byte, c.StateSize())
	if err := c.SaveState(buf); err != nil {
		return err
	}
	c.slots[slot] = buf
	fmt.Fprintf(c.out, "Saved slot %q (%d bytes)\n", slot, len(buf))
	return nil
}

func (c *DebugConsole) loadCommand(slot string) error {
	buf, ok := c.slots[slot]
	if !ok {
		return fmt.Errorf("No save state in slot %q", slot)
	}
	return c.LoadState(buf)
}

func (c *DebugConsole) vizCommand(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Failed to create %s: %w", path, err)
	}
	defer f.Close()
	b := c.bus
	memviz.Map(f, &b.sched, &b.irq, &b.lcd, &b.tima, &b.serial, &b.dma)
	fmt.Fprintf(c.out, "Wrote %s\n", path)
	return nil
}

func (c *DebugConsole) count(args []string) (int, error) {
	if len(args) < 2 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("Invalid count %q: %w", args[1], err)
	}
	return n, nil
}

// Step reads and executes one command. It returns ErrQuit after q and
// io.EOF when the input is exhausted.
func (c *DebugConsole) Step() error {
	fmt.Fprintf(c.out, "Debugger mode, 'q' to quit \n>> ")
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return err
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "s", "step":
		n, err := c.count(args)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(c.out, "Dispatched %s\n", c.step())
		}
		c.basePrint()
	case "f", "frame":
		n, err := c.count(args)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.RunFor(FrameCycles)
		}
		c.basePrint()
	case "peek":
		return c.peekCommand(args)
	case "poke":
		return c.pokeCommand(args)
	case "save", "load":
		if len(args) < 2 {
			return fmt.Errorf("Usage: %s SLOT", args[0])
		}
		if args[0] == "save" {
			return c.saveCommand(args[1])
		}
		return c.loadCommand(args[1])
	case "viz":
		if len(args) < 2 {
			return fmt.Errorf("Usage: viz FILE")
		}
		return c.vizCommand(args[1])
	case "r", "reset":
		c.Reset()
		c.events = 0
	case "q", "quit":
		fmt.Fprintln(c.out, "Quitting.")
		return ErrQuit
	default:
		return fmt.Errorf("Unknown command %s", args[0])
	}
	return nil
}

// Run executes commands until quit or end of input. Command errors are
// printed and do not stop the loop.
func (c *DebugConsole) Run() error {
	for {
		err := c.Step()
		switch {
		case err == nil:
		case errors.Is(err, ErrQuit), errors.Is(err, io.EOF):
			return nil
		default:
			fmt.Fprintln(c.out, err)
		}
	}
}
