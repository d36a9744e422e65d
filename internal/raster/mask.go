package raster

// Mask is a fixed-shape boolean raster stored row-major.
type Mask struct {
	width  int
	height int
	bits   []bool
}

func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, bits: make([]bool, width*height)}
}

func (m *Mask) Width() int           { return m.width }
func (m *Mask) Height() int          { return m.height }
func (m *Mask) At(x, y int) bool     { return m.bits[y*m.width+x] }
func (m *Mask) Set(x, y int, v bool) { m.bits[y*m.width+x] = v }

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}
