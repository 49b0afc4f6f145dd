// Package presets discovers background images that can seed a new map.
package presets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrUnknownPreset is returned for names not in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// MazeName is the built-in preset that generates a maze instead of loading an
// image.
const MazeName = "maze"

// Kind tells the editor how to materialise a preset.
type Kind int

const (
	KindImage Kind = iota
	KindMaze
)

// Preset is one catalog entry.
type Preset struct {
	Name string
	Kind Kind
	Path string // slash-separated, relative to the catalog root
}

// Catalog is an ordered set of presets. The maze preset is always first.
type Catalog struct {
	fsys    fs.FS
	entries []Preset
}

// Builtin returns a catalog holding only the maze preset.
func Builtin() *Catalog {
	return &Catalog{entries: []Preset{{Name: MazeName, Kind: KindMaze}}}
}

// Open discovers presets under dir. A missing or empty dir yields the
// built-in catalog.
func Open(dir, pattern string) (*Catalog, error) {
	if dir == "" {
		return Builtin(), nil
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Builtin(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat presets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("presets dir %s is not a directory", dir)
	}
	return Discover(os.DirFS(dir), pattern)
}

// Discover globs fsys for image files. Names are file paths without their
// extension; a collision keeps the first path in lexical order.
func Discover(fsys fs.FS, pattern string) (*Catalog, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob presets %q: %w", pattern, err)
	}
	sort.Strings(matches)

	c := Builtin()
	c.fsys = fsys
	seen := map[string]bool{MazeName: true}
	for _, m := range matches {
		name := strings.TrimSuffix(m, path.Ext(m))
		if seen[name] {
			continue
		}
		seen[name] = true
		c.entries = append(c.entries, Preset{Name: name, Kind: KindImage, Path: m})
	}
	return c, nil
}

// Len returns the number of presets.
func (c *Catalog) Len() int { return len(c.entries) }

// Names lists preset names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.entries))
	for i, p := range c.entries {
		out[i] = p.Name
	}
	return out
}

// Get looks a preset up by name.
func (c *Catalog) Get(name string) (Preset, bool) {
	for _, p := range c.entries {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Images returns only the image presets.
func (c *Catalog) Images() []Preset {
	var out []Preset
	for _, p := range c.entries {
		if p.Kind == KindImage {
			out = append(out, p)
		}
	}
	return out
}

// Read returns the encoded bytes of an image preset.
func (c *Catalog) Read(name string) ([]byte, error) {
	p, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if p.Kind != KindImage {
		return nil, fmt.Errorf("preset %q is not an image", name)
	}
	data, err := fs.ReadFile(c.fsys, p.Path)
	if err != nil {
		return nil, fmt.Errorf("read preset %q: %w", name, err)
	}
	return data, nil
}

// Next returns the preset after current, wrapping around. An unknown current
// yields the first preset.
func (c *Catalog) Next(current string) string {
	for i, p := range c.entries {
		if p.Name == current {
			return c.entries[(i+1)%len(c.entries)].Name
		}
	}
	return c.entries[0].Name
}
