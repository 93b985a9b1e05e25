package ui

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// Palette holds the four shades of the background and the two sprite
// palettes of a DMG game.
type Palette struct {
	Background [4]color.RGBA
	Sprite1    [4]color.RGBA
	Sprite2    [4]color.RGBA
}

var greys = [4]color.RGBA{
	{0xF8, 0xF8, 0xF8, 0xFF}, {0xA8, 0xA8, 0xA8, 0xFF}, {0x50, 0x50, 0x50, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
}

// DefaultPalette returns grey shades for every palette.
func DefaultPalette() *Palette {
	return &Palette{Background: greys, Sprite1: greys, Sprite2: greys}
}

// PalettePath is where the palette of romPath is looked up:
// <sysdir>/palettes/<rom basename>.pal.
func PalettePath(sysdir, romPath string) string {
	base := filepath.Base(romPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(sysdir, "palettes", base+".pal")
}

// LoadPalette reads the palette file at path. A missing file is not an
// error, it yields the default palette.
func LoadPalette(path string) (*Palette, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		glog.V(1).Infof("No palette at %s\n", path)
		return DefaultPalette(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := parsePalette(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	glog.V(1).Infof("Loaded palette %s\n", path)
	return p, nil
}

// parsePalette reads twelve 0xRRGGBB colors, background first then the two
// sprite palettes. A line may be a bare value or key=value; blank lines,
// [sections] and ; comments are skipped.
func parsePalette(r io.Reader) (*Palette, error) {
	p := &Palette{}
	dst := []*[4]color.RGBA{&p.Background, &p.Sprite1, &p.Sprite2}
	n := 0
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "[") {
			continue
		}
		if i := strings.IndexByte(text, '='); i >= 0 {
			text = strings.TrimSpace(text[i+1:])
		}
		rgb, err := parseColor(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n == 12 {
			return nil, fmt.Errorf("line %d: more than 12 colors", line)
		}
		dst[n/4][n%4] = color.RGBA{byte(rgb >> 16), byte(rgb >> 8), byte(rgb), 0xFF}
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if n != 12 {
		return nil, fmt.Errorf("Palette has %d colors, want 12", n)
	}
	return p, nil
}

func parseColor(s string) (uint32, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid color %q", s)
	}
	if v > 0xFFFFFF {
		return 0, fmt.Errorf("Color out of range: 0x%x", v)
	}
	return uint32(v), nil
}
