package frame

// Resize scales the frame to the requested size with bilinear sampling.
func Resize(f *Frame, width, height int) *Frame {
	if width <= 0 || height <= 0 {
		return New(0, 0)
	}
	if width == f.Width && height == f.Height {
		return f.Clone()
	}
	out := New(width, height)
	out.Fps = f.Fps
	xRatio := float64(f.Width) / float64(width)
	yRatio := float64(f.Height) / float64(height)
	for y := 0; y < height; y++ {
		srcY := (float64(y) + 0.5) * yRatio
		y0, fy := splitCoord(srcY, f.Height)
		for x := 0; x < width; x++ {
			srcX := (float64(x) + 0.5) * xRatio
			x0, fx := splitCoord(srcX, f.Width)
			x1 := min(x0+1, f.Width-1)
			y1 := min(y0+1, f.Height-1)

			for c := 0; c < 3; c++ {
				p00 := float64(f.Data[(y0*f.Width+x0)*3+c])
				p10 := float64(f.Data[(y0*f.Width+x1)*3+c])
				p01 := float64(f.Data[(y1*f.Width+x0)*3+c])
				p11 := float64(f.Data[(y1*f.Width+x1)*3+c])
				top := p00 + (p10-p00)*fx
				bottom := p01 + (p11-p01)*fx
				out.Data[(y*width+x)*3+c] = clampByte(top + (bottom-top)*fy)
			}
		}
	}
	return out
}

// ResizeGray scales a grayscale image with bilinear sampling.
func ResizeGray(g *Gray, width, height int) *Gray {
	if width <= 0 || height <= 0 {
		return NewGray(0, 0)
	}
	if width == g.Width && height == g.Height {
		return g.Clone()
	}
	out := NewGray(width, height)
	xRatio := float64(g.Width) / float64(width)
	yRatio := float64(g.Height) / float64(height)
	for y := 0; y < height; y++ {
		srcY := (float64(y) + 0.5) * yRatio
		y0, fy := splitCoord(srcY, g.Height)
		for x := 0; x < width; x++ {
			srcX := (float64(x) + 0.5) * xRatio
			x0, fx := splitCoord(srcX, g.Width)
			x1 := min(x0+1, g.Width-1)
			y1 := min(y0+1, g.Height-1)

			p00 := float64(g.Pix[y0*g.Width+x0])
			p10 := float64(g.Pix[y0*g.Width+x1])
			p01 := float64(g.Pix[y1*g.Width+x0])
			p11 := float64(g.Pix[y1*g.Width+x1])
			top := p00 + (p10-p00)*fx
			bottom := p01 + (p11-p01)*fx
			out.Pix[y*width+x] = clampByte(top + (bottom-top)*fy)
		}
	}
	return out
}

// splitCoord maps a continuous source coordinate to the integer sample
// below it and the fractional distance to the next one.
func splitCoord(v float64, limit int) (int, float64) {
	v -= 0.5
	if v < 0 {
		v = 0
	}
	i := int(v)
	if i > limit-1 {
		i = limit - 1
	}
	return i, v - float64(i)
}
