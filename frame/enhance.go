package frame

import (
	"image/color"
	"math"
)

const (
	contrastTileGrid  = 8
	contrastClipLimit = 3.0

	edgeWeakThreshold   = 50.0
	edgeStrongThreshold = 150.0
)

// EqualizeContrast applies tile-based histogram equalization to the
// luminance channel only, leaving chroma untouched. Tile lookup tables are
// blended bilinearly so tile borders do not show.
func EqualizeContrast(f *Frame) *Frame {
	w, h := f.Width, f.Height
	if w == 0 || h == 0 {
		return f.Clone()
	}
	luma := NewGray(w, h)
	cb := make([]uint8, w*h)
	cr := make([]uint8, w*h)
	for i := 0; i < w*h; i++ {
		y, u, v := color.RGBToYCbCr(f.Data[i*3+2], f.Data[i*3+1], f.Data[i*3])
		luma.Pix[i] = y
		cb[i] = u
		cr[i] = v
	}

	luts := buildTileLUTs(luma, contrastTileGrid, contrastClipLimit)
	equalized := applyTileLUTs(luma, luts, contrastTileGrid)

	out := New(w, h)
	out.Fps = f.Fps
	for i := 0; i < w*h; i++ {
		r, g, b := color.YCbCrToRGB(equalized.Pix[i], cb[i], cr[i])
		out.Data[i*3] = b
		out.Data[i*3+1] = g
		out.Data[i*3+2] = r
	}
	return out
}

func buildTileLUTs(g *Gray, grid int, clipLimit float64) [][]uint8 {
	luts := make([][]uint8, grid*grid)
	tileW := (g.Width + grid - 1) / grid
	tileH := (g.Height + grid - 1) / grid
	for ty := 0; ty < grid; ty++ {
		for tx := 0; tx < grid; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1 := min(x0+tileW, g.Width)
			y1 := min(y0+tileH, g.Height)

			var hist [256]float64
			count := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[g.At(x, y)]++
					count++
				}
			}
			if count == 0 {
				luts[ty*grid+tx] = identityLUT()
				continue
			}

			// Clip the histogram and hand the excess back evenly,
			// which bounds how hard flat regions get stretched.
			limit := clipLimit * float64(count) / 256
			if limit < 1 {
				limit = 1
			}
			excess := 0.0
			for i := range hist {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			share := excess / 256
			lut := make([]uint8, 256)
			cum := 0.0
			for i := range hist {
				cum += hist[i] + share
				lut[i] = clampByte(cum / float64(count) * 255)
			}
			luts[ty*grid+tx] = lut
		}
	}
	return luts
}

func identityLUT() []uint8 {
	lut := make([]uint8, 256)
	for i := range lut {
		lut[i] = uint8(i)
	}
	return lut
}

func applyTileLUTs(g *Gray, luts [][]uint8, grid int) *Gray {
	out := NewGray(g.Width, g.Height)
	tileW := float64(g.Width) / float64(grid)
	tileH := float64(g.Height) / float64(grid)
	for y := 0; y < g.Height; y++ {
		fy := (float64(y)+0.5)/tileH - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := clampTile(ty0+1, grid)
		ty0 = clampTile(ty0, grid)
		for x := 0; x < g.Width; x++ {
			fx := (float64(x)+0.5)/tileW - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := clampTile(tx0+1, grid)
			tx0 = clampTile(tx0, grid)

			v := g.At(x, y)
			v00 := float64(luts[ty0*grid+tx0][v])
			v10 := float64(luts[ty0*grid+tx1][v])
			v01 := float64(luts[ty1*grid+tx0][v])
			v11 := float64(luts[ty1*grid+tx1][v])
			top := v00 + (v10-v00)*wx
			bottom := v01 + (v11-v01)*wx
			out.Set(x, y, clampByte(top+(bottom-top)*wy))
		}
	}
	return out
}

func clampTile(t, grid int) int {
	if t < 0 {
		return 0
	}
	if t >= grid {
		return grid - 1
	}
	return t
}

// Smooth runs an edge-preserving bilateral filter over the frame.
func Smooth(f *Frame) *Frame {
	const radius = 2
	const sigmaSpace = 75.0
	const sigmaColor = 75.0

	out := New(f.Width, f.Height)
	out.Fps = f.Fps

	var spatial [2*radius + 1][2*radius + 1]float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[dy+radius][dx+radius] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			cb, cg, cr := f.At(x, y)
			var sumB, sumG, sumR, norm float64
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= f.Height {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= f.Width {
						continue
					}
					b, g, r := f.At(nx, ny)
					db := float64(b) - float64(cb)
					dg := float64(g) - float64(cg)
					dr := float64(r) - float64(cr)
					colorDist := db*db + dg*dg + dr*dr
					w := spatial[dy+radius][dx+radius] *
						math.Exp(-colorDist/(2*sigmaColor*sigmaColor))
					sumB += w * float64(b)
					sumG += w * float64(g)
					sumR += w * float64(r)
					norm += w
				}
			}
			out.Set(x, y, clampByte(sumB/norm), clampByte(sumG/norm), clampByte(sumR/norm))
		}
	}
	return out
}

// DetectEdges finds edges by gradient magnitude with hysteresis: weak edges
// survive only when connected to a strong one. The result is a 0/255 mask.
func DetectEdges(g *Gray) *Gray {
	_, mag := SobelGradients(g)
	w, h := g.Width, g.Height
	out := NewGray(w, h)

	const (
		none   = 0
		weak   = 1
		strong = 2
	)
	marks := make([]uint8, w*h)
	var queue []int
	for i, m := range mag {
		v := m * 255
		switch {
		case v >= edgeStrongThreshold:
			marks[i] = strong
			queue = append(queue, i)
		case v >= edgeWeakThreshold:
			marks[i] = weak
		}
	}

	// Second pass: promote weak edges reachable from a strong one.
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		out.Pix[i] = 255
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if marks[ni] == weak {
					marks[ni] = strong
					queue = append(queue, ni)
				}
			}
		}
	}
	return out
}

// Dilate thickens a binary mask by one 3x3 structuring-element pass.
func Dilate(mask *Gray) *Gray {
	w, h := mask.Width, mask.Height
	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					if mask.At(nx, ny) > 0 {
						out.Set(x, y, 255)
					}
				}
			}
		}
	}
	return out
}

// BlendEdges mixes an edge mask into every channel at the given weight.
func BlendEdges(f *Frame, edges *Gray, weight float64) *Frame {
	out := New(f.Width, f.Height)
	out.Fps = f.Fps
	for i := 0; i < f.Width*f.Height; i++ {
		e := float64(edges.Pix[i]) * weight
		for c := 0; c < 3; c++ {
			v := float64(f.Data[i*3+c])*(1-weight) + e
			out.Data[i*3+c] = clampByte(v)
		}
	}
	return out
}
