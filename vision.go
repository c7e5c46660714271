package viamconnect4

import (
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
)

// Mask is a binary image indexed [y][x].
type Mask [][]bool

func NewMask(width, height int) Mask {
	m := make(Mask, height)
	for y := range height {
		m[y] = make([]bool, width)
	}
	return m
}

func (m Mask) Height() int { return len(m) }

func (m Mask) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

func (m Mask) Count() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// Contour is one connected region of a mask.
type Contour struct {
	// Area is the number of pixels in the region.
	Area int
	// FilledArea also counts the holes enclosed by the region.
	FilledArea int
	// Boundary holds the region pixels that touch the outside.
	Boundary []image.Point
	Bounds   image.Rectangle
}

// Vision is the set of image primitives the pipeline needs.
type Vision interface {
	Threshold(img image.Image, r ColorRange) Mask
	Contours(m Mask) []Contour
	MinEnclosingCircle(points []image.Point) Circle
	HoughLines(edges Mask, threshold int) []Line
}

// NewVision returns the pure Go implementation of Vision.
func NewVision(t Tunables) Vision {
	return &pureVision{morphRadius: t.MorphRadius}
}

type pureVision struct {
	morphRadius int
}

// Threshold selects pixels in range r, then opens the mask to drop speckle.
func (v *pureVision) Threshold(img image.Image, r ColorRange) Mask {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := NewMask(width, height)

	for y := range height {
		for x := range width {
			c, ok := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			if !ok {
				continue
			}
			mask[y][x] = r.Matches(c)
		}
	}

	if v.morphRadius > 0 {
		mask = erodeMask(mask, width, height, v.morphRadius)
		mask = dilateMask(mask, width, height, v.morphRadius)
	}
	return mask
}

// Contours labels the 4-connected regions of m, largest first.
func (v *pureVision) Contours(m Mask) []Contour {
	width, height := m.Width(), m.Height()
	labels := make([][]int, height)
	for y := range height {
		labels[y] = make([]int, width)
	}

	var contours []Contour
	currentLabel := 0
	for y := range height {
		for x := range width {
			if m[y][x] && labels[y][x] == 0 {
				currentLabel++
				pixels := floodFill(m, labels, x, y, width, height, currentLabel)
				contours = append(contours, outline(labels, currentLabel, pixels))
			}
		}
	}

	sort.SliceStable(contours, func(i, j int) bool {
		return contours[i].Area > contours[j].Area
	})
	return contours
}

func (v *pureVision) MinEnclosingCircle(points []image.Point) Circle {
	pts := make([]r2.Point, len(points))
	for i, p := range points {
		pts[i] = r2.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return minEnclosingCircle(pts)
}

func (v *pureVision) HoughLines(edges Mask, threshold int) []Line {
	return houghLineDetection(edges, edges.Width(), edges.Height(), threshold)
}

// BoundaryMask draws the boundary of c into a width x height mask.
func BoundaryMask(c Contour, width, height int) Mask {
	m := NewMask(width, height)
	for _, p := range c.Boundary {
		if p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height {
			m[p.Y][p.X] = true
		}
	}
	return m
}

func floodFill(mask Mask, labels [][]int, startX, startY, width, height, label int) []image.Point {
	stack := []image.Point{{startX, startY}}
	var pixels []image.Point

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if !mask[p.Y][p.X] || labels[p.Y][p.X] != 0 {
			continue
		}

		labels[p.Y][p.X] = label
		pixels = append(pixels, p)

		stack = append(stack, image.Point{p.X + 1, p.Y})
		stack = append(stack, image.Point{p.X - 1, p.Y})
		stack = append(stack, image.Point{p.X, p.Y + 1})
		stack = append(stack, image.Point{p.X, p.Y - 1})
	}

	return pixels
}

// outline finds the outer boundary and filled area of one labelled region by
// flooding the background from just outside its bounding box.
func outline(labels [][]int, label int, pixels []image.Point) Contour {
	bounds := image.Rectangle{Min: pixels[0], Max: pixels[0].Add(image.Pt(1, 1))}
	for _, p := range pixels {
		bounds = bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}

	// local grid is the bounding box padded by one pixel on each side
	w, h := bounds.Dx()+2, bounds.Dy()+2
	inRegion := func(lx, ly int) bool {
		x, y := lx-1+bounds.Min.X, ly-1+bounds.Min.Y
		if y < 0 || y >= len(labels) || x < 0 || x >= len(labels[y]) {
			return false
		}
		return labels[y][x] == label
	}

	outside := make([]bool, w*h)
	outsideCount := 0
	stack := []image.Point{{0, 0}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		if outside[p.Y*w+p.X] || inRegion(p.X, p.Y) {
			continue
		}
		outside[p.Y*w+p.X] = true
		outsideCount++
		stack = append(stack,
			image.Point{p.X + 1, p.Y}, image.Point{p.X - 1, p.Y},
			image.Point{p.X, p.Y + 1}, image.Point{p.X, p.Y - 1})
	}

	var boundary []image.Point
	for _, p := range pixels {
		lx, ly := p.X-bounds.Min.X+1, p.Y-bounds.Min.Y+1
		if outside[ly*w+lx-1] || outside[ly*w+lx+1] || outside[(ly-1)*w+lx] || outside[(ly+1)*w+lx] {
			boundary = append(boundary, p)
		}
	}

	return Contour{
		Area:       len(pixels),
		FilledArea: w*h - outsideCount,
		Boundary:   boundary,
		Bounds:     bounds,
	}
}

func erodeMask(mask Mask, width, height, radius int) Mask {
	result := NewMask(width, height)

	for y := radius; y < height-radius; y++ {
		for x := radius; x < width-radius; x++ {
			allSet := true
			for dy := -radius; dy <= radius && allSet; dy++ {
				for dx := -radius; dx <= radius && allSet; dx++ {
					if !mask[y+dy][x+dx] {
						allSet = false
					}
				}
			}
			result[y][x] = allSet
		}
	}

	return result
}

func dilateMask(mask Mask, width, height, radius int) Mask {
	result := NewMask(width, height)

	for y := radius; y < height-radius; y++ {
		for x := radius; x < width-radius; x++ {
			anySet := false
			for dy := -radius; dy <= radius && !anySet; dy++ {
				for dx := -radius; dx <= radius && !anySet; dx++ {
					if mask[y+dy][x+dx] {
						anySet = true
					}
				}
			}
			result[y][x] = anySet
		}
	}

	return result
}

// houghLineDetection detects lines using Hough transform, 1 pixel and 1
// degree resolution. Lines are sorted by votes, descending.
func houghLineDetection(edges Mask, width, height int, voteThreshold int) []Line {
	maxRho := int(math.Sqrt(float64(width*width + height*height)))
	numThetas := 180

	// Accumulator: rho ranges from -maxRho to +maxRho
	accumulator := make([][]int, 2*maxRho+1)
	for i := range accumulator {
		accumulator[i] = make([]int, numThetas)
	}

	cosTheta := make([]float64, numThetas)
	sinTheta := make([]float64, numThetas)
	for t := 0; t < numThetas; t++ {
		theta := float64(t) * math.Pi / float64(numThetas)
		cosTheta[t] = math.Cos(theta)
		sinTheta[t] = math.Sin(theta)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges[y][x] {
				continue
			}

			for t := 0; t < numThetas; t++ {
				rho := float64(x)*cosTheta[t] + float64(y)*sinTheta[t]
				rhoIdx := int(math.Round(rho)) + maxRho
				if rhoIdx >= 0 && rhoIdx < 2*maxRho+1 {
					accumulator[rhoIdx][t]++
				}
			}
		}
	}

	var lines []Line
	for rhoIdx := 0; rhoIdx < 2*maxRho+1; rhoIdx++ {
		for t := 0; t < numThetas; t++ {
			if accumulator[rhoIdx][t] < voteThreshold {
				continue
			}

			// Local maximum check (simple 5x5 neighborhood)
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nRho := rhoIdx + dr
					nT := t + dt
					if nT < 0 || nT >= numThetas {
						// theta+pi is the same line with rho negated
						nT = (nT + numThetas) % numThetas
						nRho = 2*maxRho - nRho
					}
					if nRho >= 0 && nRho < 2*maxRho+1 {
						if accumulator[nRho][nT] > accumulator[rhoIdx][t] {
							isMax = false
						}
					}
				}
			}

			if isMax {
				rho := float64(rhoIdx - maxRho)
				theta := float64(t) * math.Pi / float64(numThetas)
				lines = append(lines, Line{Rho: rho, Theta: theta, Votes: accumulator[rhoIdx][t]})
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Votes > lines[j].Votes
	})

	return lines
}

const circleEpsilon = 1e-7

// minEnclosingCircle is Welzl's algorithm in its iterative form.
func minEnclosingCircle(pts []r2.Point) Circle {
	if len(pts) == 0 {
		return Circle{}
	}
	covers := func(c Circle, p r2.Point) bool {
		return c.Center.Sub(p).Norm() <= c.Radius+circleEpsilon
	}

	c := Circle{Center: pts[0]}
	for i := 1; i < len(pts); i++ {
		if covers(c, pts[i]) {
			continue
		}
		c = Circle{Center: pts[i]}
		for j := 0; j < i; j++ {
			if covers(c, pts[j]) {
				continue
			}
			c = circleFromTwo(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if covers(c, pts[k]) {
					continue
				}
				c = circleFromThree(pts[i], pts[j], pts[k])
			}
		}
	}
	return c
}

func circleFromTwo(a, b r2.Point) Circle {
	center := a.Add(b).Mul(0.5)
	return Circle{Center: center, Radius: a.Sub(b).Norm() / 2}
}

func circleFromThree(a, b, c r2.Point) Circle {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		// collinear, the widest pair spans the circle
		best := circleFromTwo(a, b)
		for _, cand := range []Circle{circleFromTwo(a, c), circleFromTwo(b, c)} {
			if cand.Radius > best.Radius {
				best = cand
			}
		}
		return best
	}
	a2, b2, c2 := a.Dot(a), b.Dot(b), c.Dot(c)
	center := r2.Point{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
	return Circle{Center: center, Radius: center.Sub(a).Norm()}
}
