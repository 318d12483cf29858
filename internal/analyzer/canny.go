package analyzer

import (
	"math"

	"github.com/ivlev/cardvision/internal/imgproc"
)

const (
	tan22 = 0.41421356 // tan(22.5°)
	tan67 = 2.41421356 // tan(67.5°)
)

// mask is a binary image, one byte per pixel (0 or 1)
type mask struct {
	w, h int
	pix  []uint8
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, pix: make([]uint8, w*h)}
}

func (m *mask) on(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.w && y < m.h && m.pix[y*m.w+x] != 0
}

// canny runs Sobel gradients, non-maximum suppression and hysteresis on an
// already blurred plane. Magnitude is |dx|+|dy|.
func canny(p *imgproc.Plane, low, high float64) *mask {
	dx, dy := imgproc.Sobel(p)
	w, h := p.W, p.H

	mag := make([]float64, w*h)
	for i := range mag {
		mag[i] = math.Abs(float64(dx.Pix[i])) + math.Abs(float64(dy.Pix[i]))
	}
	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// 0 = suppressed, 1 = weak, 2 = strong
	state := make([]uint8, w*h)
	var stack []int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			gx, gy := float64(dx.Pix[i]), float64(dy.Pix[i])
			ax, ay := math.Abs(gx), math.Abs(gy)

			var n1, n2 float64
			switch {
			case ay <= ax*tan22:
				n1, n2 = magAt(x-1, y), magAt(x+1, y)
			case ay > ax*tan67:
				n1, n2 = magAt(x, y-1), magAt(x, y+1)
			case (gx > 0) == (gy > 0):
				n1, n2 = magAt(x-1, y-1), magAt(x+1, y+1)
			default:
				n1, n2 = magAt(x+1, y-1), magAt(x-1, y+1)
			}
			// strict on one side so flat ridges keep exactly one pixel
			if !(m > n1 && m >= n2) {
				continue
			}

			if m > high {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	edges := newMask(w, h)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if edges.pix[i] != 0 {
			continue
		}
		edges.pix[i] = 1

		x, y := i%w, i/w
		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				nx, ny := x+kx, y+ky
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] != 0 && edges.pix[j] == 0 {
					stack = append(stack, j)
				}
			}
		}
	}

	return edges
}

// dilate performs morphological dilation with a 3x3 square, once per iteration
func dilate(m *mask, iterations int) *mask {
	result := m
	for iter := 0; iter < iterations; iter++ {
		temp := newMask(m.w, m.h)
		for y := 0; y < m.h; y++ {
			for x := 0; x < m.w; x++ {
			kernel:
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						if result.on(x+kx, y+ky) {
							temp.pix[y*m.w+x] = 1
							break kernel
						}
					}
				}
			}
		}
		result = temp
	}
	return result
}
