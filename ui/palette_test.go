package ui

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

const gambattePalette = `[General]
Background0=16777215
Background1=0xAAAAAA
Background2=#555555
Background3=0
; sprites
Sprite%2010=16711680
Sprite%2011=16711680
Sprite%2012=16711680
Sprite%2013=16711680
Sprite%2020=255
Sprite%2021=255
Sprite%2022=255
Sprite%2023=255
`

func TestParsePalette(t *testing.T) {
	p, err := parsePalette(strings.NewReader(gambattePalette))
	assert.NoError(t, err)
	assert.Equal(t, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, p.Background[0])
	assert.Equal(t, color.RGBA{0xAA, 0xAA, 0xAA, 0xFF}, p.Background[1])
	assert.Equal(t, color.RGBA{0x55, 0x55, 0x55, 0xFF}, p.Background[2])
	assert.Equal(t, color.RGBA{0, 0, 0, 0xFF}, p.Background[3])
	assert.Equal(t, color.RGBA{0xFF, 0, 0, 0xFF}, p.Sprite1[2])
	assert.Equal(t, color.RGBA{0, 0, 0xFF, 0xFF}, p.Sprite2[3])
}

func TestParsePaletteErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"short", "0\n1\n2\n"},
		{"long", strings.Repeat("0\n", 13)},
		{"garbage", strings.Repeat("0\n", 11) + "blue\n"},
		{"range", strings.Repeat("0\n", 11) + "0x1000000\n"},
	}
	for _, tt := range tests {
		if _, err := parsePalette(strings.NewReader(tt.in)); err == nil {
			t.Fatalf("%s: got=nil, want error", tt.name)
		}
	}
}

func TestPalettePath(t *testing.T) {
	got := PalettePath("/sys", "/roms/Tetris (World).gb")
	want := filepath.Join("/sys", "palettes", "Tetris (World).pal")
	if got != want {
		t.Fatalf("PalettePath: got=%s, want=%s", got, want)
	}
}

func TestLoadPaletteMissing(t *testing.T) {
	p, err := LoadPalette(filepath.Join(t.TempDir(), "none.pal"))
	assert.NoError(t, err)
	assert.Equal(t, *DefaultPalette(), *p)
}

func TestLoadPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.pal")
	assert.NoError(t, os.WriteFile(path, []byte(gambattePalette), 0o644))
	p, err := LoadPalette(path)
	assert.NoError(t, err)
	assert.Equal(t, color.RGBA{0xAA, 0xAA, 0xAA, 0xFF}, p.Background[1])
}

func TestTileViewerBlit(t *testing.T) {
	v := newTileViewer(nil)
	vram := make([]byte, 0x2000)
	// Tile 1, first row: lo=0x80 hi=0x80 is shade 3 at x=0, lo=0x40 is
	// shade 1 at x=1.
	vram[16] = 0xC0
	vram[17] = 0x80
	v.Blit(vram, 7)
	img, frame := v.image()
	assert.Equal(t, uint64(7), frame)
	assert.Equal(t, greys[3], img.RGBAAt(8, 0))
	assert.Equal(t, greys[1], img.RGBAAt(9, 0))
	assert.Equal(t, greys[0], img.RGBAAt(10, 0))
}

func TestResampler(t *testing.T) {
	var rs resampler
	buf := make([]uint32, nativeRate)
	buf[0] = 0x7FFF8000
	n := 0
	rs.frames(buf, func(l, r int16) { n++ })
	if n != sampleRate {
		t.Fatalf("frames: got=%d, want=%d", n, sampleRate)
	}
}
