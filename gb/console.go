package gb

import (
	"fmt"
	"io"

	"github.com/golang/glog"
)

// Cycles per frame in single speed, the natural RunFor step of a frontend.
const FrameCycles = frameCycles

// CPU is an instruction interpreter driving the bus.
type CPU interface {
	// Run executes instructions from cycle until it reaches until or halts,
	// returning the cycle it stopped at.
	Run(mem Memory, cycle, until uint64) uint64
	// Interrupt dispatches to vector and returns the cycle after the
	// dispatch sequence.
	Interrupt(mem Memory, vector uint16, cycle uint64) uint64
}

// interruptDispatchCycles is the length of the interrupt dispatch sequence.
const interruptDispatchCycles = 20

// IdleCPU stands in for an interpreter. It spends every cycle doing nothing
// and acknowledges interrupts without pushing anything.
type IdleCPU struct{}

func (IdleCPU) Run(mem Memory, cycle, until uint64) uint64 {
	if cycle < until {
		return until
	}
	return cycle
}

func (IdleCPU) Interrupt(mem Memory, vector uint16, cycle uint64) uint64 {
	return cycle + interruptDispatchCycles
}

// Options configures a Console.
type Options struct {
	// ForceDMG runs CGB cartridges in DMG mode.
	ForceDMG bool
}

// Console ties a cartridge, the bank table and the bus together and runs
// the CPU between hardware events.
type Console struct {
	cartridge *Cartridge
	banks     *BankTable
	bus       *Bus
	cpu       CPU
	audio     AudioSink
	cycle     uint64
}

// NewConsole loads rom and resets the machine.
func NewConsole(rom []byte, opts Options) (*Console, error) {
	cartridge, err := NewCartridge(rom)
	if err != nil {
		return nil, fmt.Errorf("Failed to load the cartridge: %w", err)
	}
	cgb := cartridge.CGB && !opts.ForceDMG
	wramBanks := minWRAMBanks
	if cgb {
		wramBanks = maxWRAMBanks
	}
	banks := NewBankTable(cgb)
	if err := banks.Reset(cartridge.ROMBanks, cartridge.RAMBanks, wramBanks); err != nil {
		return nil, fmt.Errorf("Failed to allocate the cartridge memory: %w", err)
	}
	cartridge.load(banks.ROM())
	c := &Console{
		cartridge: cartridge,
		banks:     banks,
		cpu:       IdleCPU{},
	}
	c.bus = NewBus(banks, NewMapper(cartridge), c.cpu, cgb)
	glog.Infof("Console ready: %q cgb=%v", cartridge.Title, cgb)
	return c, nil
}

// Reset restarts the machine. Cartridge RAM survives.
func (c *Console) Reset() {
	fill(c.banks.WRAM(), 0)
	c.bus.reset()
	c.cycle = 0
}

// RunFor runs the machine for cycles and returns the cycle counter
// afterwards.
func (c *Console) RunFor(cycles uint64) uint64 {
	b := c.bus
	cycle := c.cycle
	b.SetEndTime(cycle, cycles)
	for !b.Ended() {
		if next := b.NextEventTime(); cycle < next && !b.Halted() {
			cycle = c.cpu.Run(b, cycle, next)
		}
		if b.Halted() || cycle >= b.NextEventTime() {
			cycle, _ = b.Event(cycle)
		}
	}
	b.fillSoundBuffer(cycle)
	b.drainSound(c.audio)
	c.cycle = cycle
	return cycle
}

// Cycle returns the cycle counter.
func (c *Console) Cycle() uint64 {
	return c.cycle
}

// SetCPU installs the instruction interpreter.
func (c *Console) SetCPU(cpu CPU) {
	c.cpu = cpu
	c.bus.cpu = cpu
}

func (c *Console) SetButtons(buttons Buttons) {
	c.bus.SetButtons(buttons, c.cycle)
}

func (c *Console) SetVideoSink(v VideoSink) {
	c.bus.video = v
}

func (c *Console) SetAudioSink(a AudioSink) {
	c.audio = a
}

func (c *Console) SetSampleGenerator(g SampleGenerator) {
	if g == nil {
		g = silence{}
	}
	c.bus.apu.gen = g
}

// SetSerialOutput receives every byte sent over the serial port.
func (c *Console) SetSerialOutput(w io.Writer) {
	c.bus.serial.w = w
}

// SaveRAM returns the cartridge RAM, nil without battery.
func (c *Console) SaveRAM() []byte {
	if !c.cartridge.Battery {
		return nil
	}
	return c.banks.RAM()
}

// LoadSaveRAM restores battery backed RAM. data must match the RAM size.
func (c *Console) LoadSaveRAM(data []byte) error {
	ram := c.banks.RAM()
	if len(data) != len(ram) {
		return fmt.Errorf("Save RAM is %d bytes, want %d", len(data), len(ram))
	}
	copy(ram, data)
	return nil
}

// RTCData returns the clock registers of an RTC cartridge with battery,
// nil otherwise. Battery files keep them after the save RAM.
func (c *Console) RTCData() []byte {
	if !c.cartridge.hasRTC() {
		return nil
	}
	r := c.bus.mapper.Registers()
	return append([]byte(nil), r.RTC[:]...)
}

// LoadRTCData restores clock registers returned by RTCData.
func (c *Console) LoadRTCData(data []byte) error {
	if !c.cartridge.hasRTC() {
		return fmt.Errorf("Cartridge type 0x%02x has no clock", c.cartridge.Type)
	}
	r := c.bus.mapper.Registers()
	if len(data) != len(r.RTC) {
		return fmt.Errorf("RTC data is %d bytes, want %d", len(data), len(r.RTC))
	}
	copy(r.RTC[:], data)
	c.bus.mapper.SetRegisters(r)
	return nil
}

// StateSize returns the size of a save state buffer.
func (c *Console) StateSize() int {
	return c.bus.StateSize()
}

// SaveState writes the machine state into buf.
func (c *Console) SaveState(buf []byte) error {
	cycle := c.cycle
	if cycle < c.bus.lastCycle {
		cycle = c.bus.lastCycle
	}
	return c.bus.saveState(buf, cycle)
}

// LoadState restores a state written by SaveState, leaving the machine
// untouched on error.
func (c *Console) LoadState(buf []byte) error {
	if err := c.bus.LoadState(buf); err != nil {
		return err
	}
	c.cycle = c.bus.lastCycle
	glog.V(1).Infof("State loaded at cycle %d", c.cycle)
	return nil
}

// Cartridge returns the loaded cartridge.
func (c *Console) Cartridge() *Cartridge {
	return c.cartridge
}

// Bus returns the memory bus.
func (c *Console) Bus() *Bus {
	return c.bus
}
