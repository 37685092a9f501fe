package frame

import (
	"errors"
	"math"
)

// SobelGradients returns per-pixel gradient direction in degrees
// (atan2 of y over x gradient) and magnitude normalized to 0..1.
func SobelGradients(g *Gray) (direction, magnitude []float64) {
	w, h := g.Width, g.Height
	direction = make([]float64, w*h)
	magnitude = make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx, gy := sobelAt(g, x, y)
			direction[y*w+x] = math.Atan2(gy, gx) * 180 / math.Pi
			magnitude[y*w+x] = math.Sqrt(gx*gx+gy*gy) / 255.0
		}
	}
	return direction, magnitude
}

// sobelAt applies the 3x3 Sobel kernels at one pixel with clamped borders.
func sobelAt(g *Gray, x, y int) (gx, gy float64) {
	sample := func(dx, dy int) float64 {
		nx, ny := x+dx, y+dy
		if nx < 0 {
			nx = 0
		} else if nx >= g.Width {
			nx = g.Width - 1
		}
		if ny < 0 {
			ny = 0
		} else if ny >= g.Height {
			ny = g.Height - 1
		}
		return float64(g.At(nx, ny))
	}
	gx = -sample(-1, -1) + sample(1, -1) +
		-2*sample(-1, 0) + 2*sample(1, 0) +
		-sample(-1, 1) + sample(1, 1)
	gy = -sample(-1, -1) - 2*sample(0, -1) - sample(1, -1) +
		sample(-1, 1) + 2*sample(0, 1) + sample(1, 1)
	return gx, gy
}

// FlowOptions mirror the usual dense optical flow tuning knobs.
type FlowOptions struct {
	PyramidScale float64
	Levels       int
	WindowSize   int
	Iterations   int
	PolyN        int
	PolySigma    float64
}

func DefaultFlowOptions() FlowOptions {
	return FlowOptions{
		PyramidScale: 0.5,
		Levels:       3,
		WindowSize:   15,
		Iterations:   3,
		PolyN:        5,
		PolySigma:    1.1,
	}
}

// FlowField is a dense per-pixel motion vector field.
type FlowField struct {
	VX, VY []float64
	Width  int
	Height int
}

// Magnitude returns the per-pixel vector length.
func (f *FlowField) Magnitude() []float64 {
	out := make([]float64, len(f.VX))
	for i := range f.VX {
		out[i] = math.Sqrt(f.VX[i]*f.VX[i] + f.VY[i]*f.VY[i])
	}
	return out
}

var errFlowInput = errors.New("optical flow: images too small or mismatched")

// EstimateFlow computes dense optical flow from prev to next with a
// coarse-to-fine pyramid and iterative windowed least squares refinement.
func EstimateFlow(prev, next *Gray, opts FlowOptions) (*FlowField, error) {
	if prev == nil || next == nil {
		return nil, errFlowInput
	}
	if prev.Width != next.Width || prev.Height != next.Height {
		return nil, errFlowInput
	}
	if prev.Width < opts.WindowSize || prev.Height < opts.WindowSize {
		return nil, errFlowInput
	}

	prevPyr := buildPyramid(prev, opts)
	nextPyr := buildPyramid(next, opts)

	var flow *FlowField
	for level := len(prevPyr) - 1; level >= 0; level-- {
		p, n := prevPyr[level], nextPyr[level]
		if flow == nil {
			flow = &FlowField{
				VX:     make([]float64, p.Width*p.Height),
				VY:     make([]float64, p.Width*p.Height),
				Width:  p.Width,
				Height: p.Height,
			}
		} else {
			flow = upsampleFlow(flow, p.Width, p.Height)
		}
		for i := 0; i < opts.Iterations; i++ {
			refineFlow(p, n, flow, opts.WindowSize)
		}
	}
	return flow, nil
}

func buildPyramid(g *Gray, opts FlowOptions) []*Gray {
	pyr := []*Gray{blurGray(g, opts.PolySigma, opts.PolyN)}
	for level := 1; level < opts.Levels; level++ {
		prev := pyr[level-1]
		w := int(float64(prev.Width) * opts.PyramidScale)
		h := int(float64(prev.Height) * opts.PyramidScale)
		if w < opts.WindowSize || h < opts.WindowSize {
			break
		}
		pyr = append(pyr, ResizeGray(prev, w, h))
	}
	return pyr
}

// blurGray applies a separable gaussian with the given sigma; the kernel
// radius follows the polynomial neighborhood size.
func blurGray(g *Gray, sigma float64, polyN int) *Gray {
	radius := polyN / 2
	if radius < 1 {
		return g.Clone()
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	tmp := NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				nx := x + k
				if nx < 0 {
					nx = 0
				} else if nx >= g.Width {
					nx = g.Width - 1
				}
				acc += kernel[k+radius] * float64(g.At(nx, y))
			}
			tmp.Set(x, y, clampByte(acc))
		}
	}
	out := NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				ny := y + k
				if ny < 0 {
					ny = 0
				} else if ny >= g.Height {
					ny = g.Height - 1
				}
				acc += kernel[k+radius] * float64(tmp.At(x, ny))
			}
			out.Set(x, y, clampByte(acc))
		}
	}
	return out
}

func upsampleFlow(f *FlowField, width, height int) *FlowField {
	out := &FlowField{
		VX:     make([]float64, width*height),
		VY:     make([]float64, width*height),
		Width:  width,
		Height: height,
	}
	scaleX := float64(width) / float64(f.Width)
	scaleY := float64(height) / float64(f.Height)
	for y := 0; y < height; y++ {
		sy := min(int(float64(y)/scaleY), f.Height-1)
		for x := 0; x < width; x++ {
			sx := min(int(float64(x)/scaleX), f.Width-1)
			out.VX[y*width+x] = f.VX[sy*f.Width+sx] * scaleX
			out.VY[y*width+x] = f.VY[sy*f.Width+sx] * scaleY
		}
	}
	return out
}

// refineFlow runs one windowed least-squares pass, warping next by the
// current flow estimate and solving the 2x2 gradient system per pixel.
func refineFlow(prev, next *Gray, flow *FlowField, window int) {
	w, h := prev.Width, prev.Height
	radius := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var a11, a12, a22, b1, b2 float64
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					i := ny*w + nx
					gx, gy := sobelAt(prev, nx, ny)
					gx /= 8
					gy /= 8
					warped := sampleGray(next, float64(nx)+flow.VX[i], float64(ny)+flow.VY[i])
					dt := warped - float64(prev.At(nx, ny))
					a11 += gx * gx
					a12 += gx * gy
					a22 += gy * gy
					b1 -= gx * dt
					b2 -= gy * dt
				}
			}
			det := a11*a22 - a12*a12
			if math.Abs(det) < 1e-6 {
				continue
			}
			i := y*w + x
			flow.VX[i] += (a22*b1 - a12*b2) / det
			flow.VY[i] += (a11*b2 - a12*b1) / det
		}
	}
}

func sampleGray(g *Gray, x, y float64) float64 {
	if x < 0 {
		x = 0
	} else if x > float64(g.Width-1) {
		x = float64(g.Width - 1)
	}
	if y < 0 {
		y = 0
	} else if y > float64(g.Height-1) {
		y = float64(g.Height - 1)
	}
	x0, y0 := int(x), int(y)
	x1 := min(x0+1, g.Width-1)
	y1 := min(y0+1, g.Height-1)
	fx, fy := x-float64(x0), y-float64(y0)
	top := float64(g.At(x0, y0))*(1-fx) + float64(g.At(x1, y0))*fx
	bottom := float64(g.At(x0, y1))*(1-fx) + float64(g.At(x1, y1))*fx
	return top*(1-fy) + bottom*fy
}

// MotionMask thresholds a magnitude field into a 0/255 binary mask.
func MotionMask(magnitude []float64, width, height int, threshold float64) *Gray {
	mask := NewGray(width, height)
	for i, m := range magnitude {
		if m > threshold {
			mask.Pix[i] = 255
		}
	}
	return mask
}

// MorphOpen removes speckle noise: one erosion followed by one dilation.
func MorphOpen(mask *Gray) *Gray {
	return Dilate(erode(mask))
}

// MorphClose fills small holes: one dilation followed by one erosion.
func MorphClose(mask *Gray) *Gray {
	return erode(Dilate(mask))
}

func erode(mask *Gray) *Gray {
	w, h := mask.Width, mask.Height
	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			keep := true
			for dy := -1; dy <= 1 && keep; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					keep = false
					break
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w || mask.At(nx, ny) == 0 {
						keep = false
						break
					}
				}
			}
			if keep {
				out.Set(x, y, 255)
			}
		}
	}
	return out
}
