package viamconnect4

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
)

// ColorRange selects pixels by HSV. Hue is in degrees; when HueMin > HueMax the
// range wraps through 0 (reds).
type ColorRange struct {
	HueMin        float64 `json:"hue-min"`
	HueMax        float64 `json:"hue-max"`
	MinSaturation float64 `json:"min-saturation"`
	MinValue      float64 `json:"min-value"`
}

func (r ColorRange) Matches(c colorful.Color) bool {
	h, s, v := c.Hsv()
	if s < r.MinSaturation || v < r.MinValue {
		return false
	}
	if r.HueMin <= r.HueMax {
		return h >= r.HueMin && h <= r.HueMax
	}
	return h >= r.HueMin || h <= r.HueMax
}

func (r ColorRange) validate(name string) error {
	var err error
	if r.HueMin < 0 || r.HueMin >= 360 || r.HueMax < 0 || r.HueMax >= 360 {
		err = multierr.Append(err, fmt.Errorf("%s: hue must be in [0, 360)", name))
	}
	if r.MinSaturation < 0 || r.MinSaturation > 1 {
		err = multierr.Append(err, fmt.Errorf("%s: min-saturation must be in [0, 1]", name))
	}
	if r.MinValue < 0 || r.MinValue > 1 {
		err = multierr.Append(err, fmt.Errorf("%s: min-value must be in [0, 1]", name))
	}
	return err
}

// Weights score a position at the depth cutoff.
type Weights struct {
	Three  int `json:"three"`
	Two    int `json:"two"`
	Center int `json:"center"`
}

// Tunables holds every threshold and weight used by the pipeline and search.
type Tunables struct {
	// AngleTolerance is in degrees.
	AngleTolerance   float64 `json:"angle-tolerance"`
	MinBoardFraction float64 `json:"min-board-fraction"`
	RadiusPadding    float64 `json:"radius-padding"`
	MinTokenArea     int     `json:"min-token-area"`
	HoughThreshold   int     `json:"hough-threshold"`
	MorphRadius      int     `json:"morph-radius"`

	// images are resized to this before processing, 0 keeps the input size
	WorkingWidth  int `json:"working-width"`
	WorkingHeight int `json:"working-height"`

	Columns     int     `json:"columns"`
	Rows        int     `json:"rows"`
	SearchDepth int     `json:"search-depth"`
	Weights     Weights `json:"weights"`

	BoardColor  ColorRange `json:"board-color"`
	RedColor    ColorRange `json:"red-color"`
	YellowColor ColorRange `json:"yellow-color"`
}

func DefaultTunables() Tunables {
	return Tunables{
		AngleTolerance:   5,
		MinBoardFraction: 0.20,
		RadiusPadding:    5,
		MinTokenArea:     200,
		HoughThreshold:   75,
		MorphRadius:      1,
		WorkingWidth:     622,
		WorkingHeight:    457,
		Columns:          StandardColumns,
		Rows:             StandardRows,
		SearchDepth:      7,
		Weights:          Weights{Three: 100, Two: 10, Center: 3},
		BoardColor:       ColorRange{HueMin: 200, HueMax: 250, MinSaturation: 0.6, MinValue: 0.23},
		RedColor:         ColorRange{HueMin: 340, HueMax: 15, MinSaturation: 0.6, MinValue: 0.23},
		YellowColor:      ColorRange{HueMin: 40, HueMax: 70, MinSaturation: 0.6, MinValue: 0.23},
	}
}

func (t Tunables) angleToleranceRadians() float64 {
	return t.AngleTolerance * math.Pi / 180
}

func (t Tunables) Validate() error {
	var err error
	if t.AngleTolerance <= 0 || t.AngleTolerance >= 90 {
		err = multierr.Append(err, fmt.Errorf("angle-tolerance must be in (0, 90) degrees, got %v", t.AngleTolerance))
	}
	if t.MinBoardFraction < 0 || t.MinBoardFraction > 1 {
		err = multierr.Append(err, fmt.Errorf("min-board-fraction must be in [0, 1], got %v", t.MinBoardFraction))
	}
	if t.RadiusPadding < 0 {
		err = multierr.Append(err, fmt.Errorf("radius-padding cannot be negative"))
	}
	if t.MinTokenArea < 0 {
		err = multierr.Append(err, fmt.Errorf("min-token-area cannot be negative"))
	}
	if t.HoughThreshold < 1 {
		err = multierr.Append(err, fmt.Errorf("hough-threshold must be positive"))
	}
	if t.MorphRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("morph-radius cannot be negative"))
	}
	if (t.WorkingWidth == 0) != (t.WorkingHeight == 0) || t.WorkingWidth < 0 || t.WorkingHeight < 0 {
		err = multierr.Append(err, fmt.Errorf("working-width and working-height must both be set or both be 0"))
	}
	if t.Columns < 4 || t.Rows < 4 {
		err = multierr.Append(err, fmt.Errorf("board must be at least 4x4, got %dx%d", t.Columns, t.Rows))
	}
	if t.SearchDepth < 1 {
		err = multierr.Append(err, ErrInvalidDepth)
	}
	err = multierr.Append(err, t.BoardColor.validate("board-color"))
	err = multierr.Append(err, t.RedColor.validate("red-color"))
	err = multierr.Append(err, t.YellowColor.validate("yellow-color"))
	return err
}

// TunablesFromAttributes overlays attrs, keyed by the json names, on the
// defaults.
func TunablesFromAttributes(attrs map[string]interface{}) (Tunables, error) {
	t := DefaultTunables()
	if len(attrs) == 0 {
		return t, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &t,
	})
	if err != nil {
		return Tunables{}, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return Tunables{}, err
	}
	return t, nil
}
