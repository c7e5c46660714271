package viamconnect4

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// collinearEpsilon is relative to the squared extent of the point set.
const collinearEpsilon = 1e-9

// Homography is a row-major 3x3 projective transform.
type Homography [9]float64

// Apply maps p; it returns false when p maps to infinity.
func (h Homography) Apply(p r2.Point) (r2.Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return r2.Point{}, false
	}
	return r2.Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

func (h Homography) inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, errors.Wrap(ErrDegenerateTransform, err.Error())
	}
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out, nil
}

func hasCollinearTriple(c Corners) bool {
	extent := 0.0
	for i := range c {
		for j := i + 1; j < len(c); j++ {
			extent = math.Max(extent, c[i].Sub(c[j]).Norm())
		}
	}
	if extent == 0 {
		return true
	}
	limit := collinearEpsilon * extent * extent
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				if math.Abs(cross(c[i], c[j], c[k])) <= limit {
					return true
				}
			}
		}
	}
	return false
}

// ComputeHomography finds the transform sending src[i] to dst[i].
func ComputeHomography(src, dst Corners) (Homography, error) {
	if hasCollinearTriple(src) {
		return Homography{}, errors.Wrap(ErrDegenerateTransform, "source corners are collinear")
	}
	if hasCollinearTriple(dst) {
		return Homography{}, errors.Wrap(ErrDegenerateTransform, "target corners are collinear")
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return Homography{}, errors.Wrap(ErrDegenerateTransform, err.Error())
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = sol.AtVec(i)
		if math.IsNaN(h[i]) || math.IsInf(h[i], 0) {
			return Homography{}, errors.Wrap(ErrDegenerateTransform, "non-finite solution")
		}
	}
	h[8] = 1
	return h, nil
}

// Rectify warps img so that corners land on the corners of a width x height
// image: top-left at (0,0), top-right at (width,0), bottom-right at
// (width,height), bottom-left at (0,height).
func Rectify(img image.Image, corners Corners, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid output size %dx%d", width, height)
	}
	toSource, err := ComputeHomography(RectCorners(float64(width), float64(height)), corners)
	if err != nil {
		return nil, err
	}
	return warp(toRGBA(img), toSource, width, height), nil
}

func warp(src *image.RGBA, toSource Homography, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p, ok := toSource.Apply(r2.Point{X: float64(x), Y: float64(y)})
			if !ok {
				continue
			}
			sampleBilinear(src, p, dst.Pix[dst.PixOffset(x, y):dst.PixOffset(x, y)+4])
		}
	}
	return dst
}

// sampleBilinear writes the interpolated color at p, in image coordinates,
// into out. Points outside the image leave out untouched.
func sampleBilinear(src *image.RGBA, p r2.Point, out []uint8) {
	b := src.Bounds()
	maxX, maxY := float64(b.Dx()-1), float64(b.Dy()-1)
	px, py := p.X-float64(b.Min.X), p.Y-float64(b.Min.Y)
	if px < -0.5 || py < -0.5 || px > maxX+0.5 || py > maxY+0.5 {
		return
	}
	px = math.Min(math.Max(px, 0), maxX)
	py = math.Min(math.Max(py, 0), maxY)

	x0, y0 := int(math.Floor(px)), int(math.Floor(py))
	x1, y1 := min(x0+1, b.Dx()-1), min(y0+1, b.Dy()-1)
	fx, fy := px-float64(x0), py-float64(y0)

	o00 := src.PixOffset(b.Min.X+x0, b.Min.Y+y0)
	o10 := src.PixOffset(b.Min.X+x1, b.Min.Y+y0)
	o01 := src.PixOffset(b.Min.X+x0, b.Min.Y+y1)
	o11 := src.PixOffset(b.Min.X+x1, b.Min.Y+y1)
	for ch := 0; ch < 4; ch++ {
		top := float64(src.Pix[o00+ch])*(1-fx) + float64(src.Pix[o10+ch])*fx
		bottom := float64(src.Pix[o01+ch])*(1-fx) + float64(src.Pix[o11+ch])*fx
		out[ch] = uint8(math.Round(top*(1-fy) + bottom*fy))
	}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	xdraw.Draw(rgba, b, img, b.Min, xdraw.Src)
	return rgba
}

// resize scales img to width x height; a zero size returns img unchanged.
func resize(img image.Image, width, height int) image.Image {
	if width == 0 || height == 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
