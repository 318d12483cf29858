package imgproc

import "math"

// GaussianKernel returns a normalized 1-D kernel of odd size. Sigma is derived
// from the size: 0.3*((size-1)*0.5-1)+0.8.
func GaussianKernel(size int) []float64 {
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	k := make([]float64, size)
	var sum float64
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// Blur applies a separable Gaussian of the given kernel size. The result is
// rounded and clamped to [0,255] so it behaves like an 8-bit image.
func Blur(p *Plane, size int) *Plane {
	k := GaussianKernel(size)
	half := len(k) / 2

	tmp := make([]float64, p.W*p.H)
	for y := 0; y < p.H; y++ {
		row := p.Pix[y*p.W : (y+1)*p.W]
		for x := 0; x < p.W; x++ {
			var s float64
			for i, w := range k {
				s += w * float64(row[reflect101(x+i-half, p.W)])
			}
			tmp[y*p.W+x] = s
		}
	}

	out := NewPlane(p.W, p.H)
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			var s float64
			for i, w := range k {
				s += w * tmp[reflect101(y+i-half, p.H)*p.W+x]
			}
			out.Pix[y*p.W+x] = float32(clamp8(math.Round(s)))
		}
	}
	return out
}

// Sobel returns the 3x3 horizontal and vertical derivatives of p.
func Sobel(p *Plane) (dx, dy *Plane) {
	dx = NewPlane(p.W, p.H)
	dy = NewPlane(p.W, p.H)

	at := func(x, y int) float32 {
		return p.Pix[reflect101(y, p.H)*p.W+reflect101(x, p.W)]
	}

	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			tl, t, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			l, r := at(x-1, y), at(x+1, y)
			bl, b, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			dx.Pix[y*p.W+x] = (tr + 2*r + br) - (tl + 2*l + bl)
			dy.Pix[y*p.W+x] = (bl + 2*b + br) - (tl + 2*t + tr)
		}
	}
	return dx, dy
}

// Magnitude returns sqrt(dx²+dy²) per pixel.
func Magnitude(dx, dy *Plane) *Plane {
	out := NewPlane(dx.W, dx.H)
	for i := range out.Pix {
		gx, gy := float64(dx.Pix[i]), float64(dy.Pix[i])
		out.Pix[i] = float32(math.Sqrt(gx*gx + gy*gy))
	}
	return out
}

func clamp8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
