package gridmap

import (
	"encoding/json"
	"fmt"
)

// FormatVersion is the map format written by Marshal. Unmarshal accepts any
// version up to and including it.
const FormatVersion = 1

type fileMap struct {
	Version       int        `json:"version"`
	Rows          int        `json:"rows"`
	Cols          int        `json:"cols"`
	PixelsPerCell float64    `json:"pixels_per_cell,omitempty"`
	Cells         []fileCell `json:"cells"`
}

type fileCell struct {
	Kind      string  `json:"k"`
	Cost      float64 `json:"cost,omitempty"`
	Direction string  `json:"dir,omitempty"`
	Target    *Point  `json:"target,omitempty"`
}

// Marshal encodes the map in the versioned JSON format. The background image
// is not part of the encoding.
func (m *GridMap) Marshal() ([]byte, error) {
	f := fileMap{
		Version:       FormatVersion,
		Rows:          m.rows,
		Cols:          m.cols,
		PixelsPerCell: m.pixelsPerCell,
		Cells:         make([]fileCell, len(m.cells)),
	}
	for i, c := range m.cells {
		fc := fileCell{Kind: c.Kind.String()}
		switch c.Kind {
		case KindNormal:
			fc.Cost = c.Cost
		case KindOneWay:
			fc.Cost = c.Cost
			fc.Direction = c.Direction.String()
			if t, ok := c.TargetPoint(); ok {
				fc.Target = &t
			}
		}
		f.Cells[i] = fc
	}
	return json.Marshal(f)
}

// Unmarshal decodes a map written by Marshal. Unknown fields are ignored and
// missing costs default to 1; a version newer than FormatVersion is rejected.
func Unmarshal(data []byte) (*GridMap, error) {
	var f fileMap
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.Version > FormatVersion {
		return nil, fmt.Errorf("%w: version %d, newest known %d", ErrUnsupportedVersion, f.Version, FormatVersion)
	}
	if err := checkDims(f.Rows, f.Cols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// Dimensions are bounded, so the product cannot overflow.
	if len(f.Cells) != f.Rows*f.Cols {
		return nil, fmt.Errorf("%w: %d cells for %dx%d map", ErrCorrupt, len(f.Cells), f.Rows, f.Cols)
	}
	m, err := New(f.Rows, f.Cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.PixelsPerCell > 0 {
		m.pixelsPerCell = f.PixelsPerCell
	}
	for i, fc := range f.Cells {
		c, err := fc.cell()
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %v", ErrCorrupt, i, err)
		}
		if err := m.validate(m.PointAt(i), c); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %v", ErrCorrupt, i, err)
		}
		m.cells[i] = c
	}
	return m, nil
}

func (fc fileCell) cell() (Cell, error) {
	cost := fc.Cost
	if cost == 0 {
		cost = 1
	}
	switch fc.Kind {
	case "", "invalid":
		return Invalid(), nil
	case "normal":
		return Normal(cost), nil
	case "oneway":
		d, err := ParseDirection(fc.Direction)
		if err != nil {
			return Cell{}, err
		}
		c := OneWay(d, cost)
		if fc.Target != nil {
			c = c.WithTarget(*fc.Target)
		}
		return c, nil
	}
	return Cell{}, fmt.Errorf("unknown cell kind %q", fc.Kind)
}
