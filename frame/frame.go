package frame

// Frame is a single decoded video frame, pixels stored as packed BGR
// triples in row-major order.
type Frame struct {
	Data   []byte
	Width  int
	Height int
	Fps    float64
}

func New(width, height int) *Frame {
	return &Frame{
		Data:   make([]byte, width*height*3),
		Width:  width,
		Height: height,
	}
}

// At returns the pixel at (x, y) in the stored BGR order.
func (f *Frame) At(x, y int) (b, g, r byte) {
	i := (y*f.Width + x) * 3
	return f.Data[i], f.Data[i+1], f.Data[i+2]
}

func (f *Frame) Set(x, y int, b, g, r byte) {
	i := (y*f.Width + x) * 3
	f.Data[i] = b
	f.Data[i+1] = g
	f.Data[i+2] = r
}

func (f *Frame) Clone() *Frame {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	return &Frame{Data: data, Width: f.Width, Height: f.Height, Fps: f.Fps}
}

// Gray converts the frame to a luminance image using perceptual weights.
func (f *Frame) Gray() *Gray {
	out := NewGray(f.Width, f.Height)
	for i := 0; i+2 < len(f.Data); i += 3 {
		b := float64(f.Data[i])
		g := float64(f.Data[i+1])
		r := float64(f.Data[i+2])
		out.Pix[i/3] = clampByte(0.2126*r + 0.7152*g + 0.0722*b)
	}
	return out
}

// Gray is a single-channel 8-bit image.
type Gray struct {
	Pix    []uint8
	Width  int
	Height int
}

func NewGray(width, height int) *Gray {
	return &Gray{Pix: make([]uint8, width*height), Width: width, Height: height}
}

func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

func (g *Gray) Clone() *Gray {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Gray{Pix: pix, Width: g.Width, Height: g.Height}
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
