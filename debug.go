package viamconnect4

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/geo/r2"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"
)

// DebugSink receives intermediate images. Implementations must not block the
// pipeline on failure.
type DebugSink interface {
	Show(img image.Image, label string)
}

// NoopSink discards everything.
type NoopSink struct{}

func (NoopSink) Show(image.Image, string) {}

// FileSink writes each image as a numbered jpeg in Dir.
type FileSink struct {
	Dir    string
	Logger logging.Logger

	mu sync.Mutex
	n  int
}

func (s *FileSink) Show(img image.Image, label string) {
	s.mu.Lock()
	s.n++
	n := s.n
	s.mu.Unlock()

	name := filepath.Join(s.Dir, fmt.Sprintf("%02d-%s.jpg", n, strings.ReplaceAll(label, " ", "-")))
	if err := rimage.WriteImageToFile(name, img); err != nil && s.Logger != nil {
		s.Logger.Warnf("can't write debug image %s: %v", name, err)
	}
}

var (
	colorRed    = color.RGBA{255, 0, 0, 255}
	colorYellow = color.RGBA{255, 255, 0, 255}
	colorGreen  = color.RGBA{0, 255, 0, 255}
	colorNavy   = color.RGBA{0, 0, 128, 255}
	colorBlack  = color.RGBA{0, 0, 0, 255}
	colorWhite  = color.RGBA{255, 255, 255, 255}
)

// MaskImage renders a mask in black and white.
func MaskImage(m Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y, row := range m {
		for x, v := range row {
			if v {
				img.Pix[img.PixOffset(x, y)] = 255
			}
		}
	}
	return img
}

// LinesImage draws the detected lines and corners over src.
func LinesImage(src image.Image, lines []Line, corners *Corners) *image.RGBA {
	dst := cloneRGBA(src)
	for _, l := range lines {
		a, b, ok := l.Segment(dst.Bounds())
		if ok {
			drawSegment(dst, a, b, colorGreen)
		}
	}
	if corners != nil {
		for _, c := range corners {
			x, y := int(math.Round(c.X)), int(math.Round(c.Y))
			drawCircle(dst, x, y, 10, colorRed)
			drawCross(dst, x, y, 15, colorRed)
		}
	}
	return dst
}

// TokenImage paints the detected circles on a plain background the size of
// bounds.
func TokenImage(bounds image.Rectangle, red, yellow []Circle) *image.RGBA {
	dst := image.NewRGBA(bounds)
	fillRect(dst, bounds, colorNavy)
	for _, c := range red {
		fillCircle(dst, c, colorRed)
	}
	for _, c := range yellow {
		fillCircle(dst, c, colorYellow)
	}
	return dst
}

// GridImage draws the grid and the cell contents of b over a rectified image.
func GridImage(src image.Image, b *Board) *image.RGBA {
	dst := cloneRGBA(src)
	bounds := dst.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	for i := 0; i <= b.Columns(); i++ {
		x := bounds.Min.X + min(width*i/b.Columns(), width-1)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			dst.Set(x, y, colorBlack)
		}
	}
	for i := 0; i <= b.Rows(); i++ {
		y := bounds.Min.Y + min(height*i/b.Rows(), height-1)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, y, colorBlack)
		}
	}

	for col := 0; col < b.Columns(); col++ {
		for row := 0; row < b.Rows(); row++ {
			m := b.At(col, row)
			if m == Empty {
				continue
			}
			center := CellCenter(bounds, b.Columns(), b.Rows(), col, row)
			label := fmt.Sprintf("%d%d-%c", col+1, row+1, m.symbol())
			drawString(dst, int(center.X)-len(label)*3, int(center.Y)+3, label, colorWhite)
		}
	}
	return dst
}

func cloneRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	xdraw.Draw(dst, b, src, b.Min, xdraw.Src)
	return dst
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func fillCircle(img *image.RGBA, c Circle, col color.Color) {
	r := image.Rect(
		int(math.Floor(c.Center.X-c.Radius)), int(math.Floor(c.Center.Y-c.Radius)),
		int(math.Ceil(c.Center.X+c.Radius))+1, int(math.Ceil(c.Center.Y+c.Radius))+1,
	).Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c.Contains(r2.Point{X: float64(x), Y: float64(y)}) {
				img.Set(x, y, col)
			}
		}
	}
}

func drawSegment(img *image.RGBA, a, b r2.Point, c color.Color) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		p := a.Add(b.Sub(a).Mul(t))
		img.Set(int(math.Round(p.X)), int(math.Round(p.Y)), c)
	}
}

func drawCircle(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for angle := 0.0; angle < 360; angle += 1 {
		x := cx + int(float64(radius)*math.Cos(angle*math.Pi/180))
		y := cy + int(float64(radius)*math.Sin(angle*math.Pi/180))
		if (image.Point{x, y}).In(img.Bounds()) {
			img.Set(x, y, c)
		}
	}
}

func drawCross(img *image.RGBA, cx, cy, size int, c color.Color) {
	for d := -size; d <= size; d++ {
		if (image.Point{cx + d, cy}).In(img.Bounds()) {
			img.Set(cx+d, cy, c)
		}
		if (image.Point{cx, cy + d}).In(img.Bounds()) {
			img.Set(cx, cy+d, c)
		}
	}
}

func drawString(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
