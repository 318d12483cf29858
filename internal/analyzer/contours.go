package analyzer

import "image"

// Moore neighbourhood in clockwise order (y grows downwards), starting west.
var ring = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

// ringIndex[dy+1][dx+1] is the position of (dx,dy) in ring
var ringIndex = [3][3]int{
	{1, 2, 3},
	{0, -1, 4},
	{7, 6, 5},
}

// findExternalContours returns the outer boundary of every shape in the edge
// mask. Everything enclosed by an edge loop (card faces, pips, inner frames)
// is merged into its enclosing shape, so only outermost contours come back.
func findExternalContours(edges *mask) [][]image.Point {
	w, h := edges.w, edges.h

	// Flood the background from the border with 4-connectivity, so 8-connected
	// edge curves act as walls.
	bg := make([]bool, w*h)
	var stack []int
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		if bg[i] || edges.pix[i] != 0 {
			return
		}
		bg[i] = true
		stack = append(stack, i)
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		push(x+1, y)
		push(x-1, y)
		push(x, y+1)
		push(x, y-1)
	}

	// Label the remaining (filled) shapes with 8-connectivity and trace each
	// one from its first pixel in raster order.
	labels := make([]int32, w*h)
	var next int32
	var contours [][]image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if bg[i] || labels[i] != 0 {
				continue
			}
			next++
			size := labelComponent(bg, labels, w, h, x, y, next)
			contours = append(contours, traceBoundary(labels, w, h, image.Pt(x, y), next, size))
		}
	}

	return contours
}

// labelComponent flood-fills one 8-connected foreground component and returns its size
func labelComponent(bg []bool, labels []int32, w, h, sx, sy int, id int32) int {
	size := 0
	stack := []image.Point{{X: sx, Y: sy}}
	labels[sy*w+sx] = id

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++

		for _, d := range ring {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if bg[j] || labels[j] != 0 {
				continue
			}
			labels[j] = id
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}
	return size
}

// traceBoundary walks the outer border of component id clockwise, starting at
// its raster-first pixel, and stops when it re-enters the start the same way
// it first left it.
func traceBoundary(labels []int32, w, h int, start image.Point, id int32, size int) []image.Point {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == id
	}

	contour := []image.Point{start}
	p := start
	back := start.Add(ring[0])
	startBack := back

	limit := 4*size + 16
	for step := 0; step < limit; step++ {
		d := back.Sub(p)
		bi := ringIndex[d.Y+1][d.X+1]

		found := false
		for k := 1; k <= 8; k++ {
			q := p.Add(ring[(bi+k)%8])
			if inside(q) {
				back = p.Add(ring[(bi+k-1)%8])
				p = q
				found = true
				break
			}
		}
		if !found {
			break // isolated pixel
		}
		if p == start && back == startBack {
			break
		}
		contour = append(contour, p)
	}

	return contour
}
