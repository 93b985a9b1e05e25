package gb

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDebugConsole(t *testing.T) {
	c := newTestConsole(t, testROM(0x1B, 8, 0x03, false))
	viz := filepath.Join(t.TempDir(), "units.dot")
	script := strings.Join([]string{
		"p",
		"p banks",
		"p sched",
		"poke 0xC000 0x42",
		"peek 0xC000 2",
		"save a",
		"s 2",
		"f",
		"load a",
		"viz " + viz,
		"bogus",
		"q",
		"p",
	}, "\n")
	var out bytes.Buffer
	d := NewDebugConsole(c, strings.NewReader(script), &out)
	assert.NoError(t, d.Run())

	got := out.String()
	for _, want := range []string{
		"Next event: blit at 65664",
		"0x4000: read=1/",
		"blit       65664",
		"0xc000: 42 00",
		"Saved slot \"a\"",
		"Dispatched blit",
		"Wrote " + viz,
		"Unknown command bogus",
		"Quitting.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output does not contain %q:\n%s", want, got)
		}
	}
	assert.Equal(t, uint64(0), c.Cycle())
	assert.Equal(t, 1, strings.Count(got, "Quitting."))
}

func TestDebugConsoleErrors(t *testing.T) {
	c := newTestConsole(t, testROM(0x00, 2, 0x00, false))
	d := NewDebugConsole(c, strings.NewReader("load nothing\npeek zz\n"), &bytes.Buffer{})
	assert.True(t, d.Step() != nil)
	assert.True(t, d.Step() != nil)
}
