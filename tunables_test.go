package viamconnect4

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestDefaultTunablesValid(t *testing.T) {
	test.That(t, DefaultTunables().Validate(), test.ShouldBeNil)
}

func TestTunablesValidate(t *testing.T) {
	bad := DefaultTunables()
	bad.AngleTolerance = 0
	bad.MinBoardFraction = 2
	bad.SearchDepth = 0
	bad.WorkingWidth = 0
	bad.RedColor.HueMin = 400

	err := bad.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 5)
	test.That(t, errors.Is(err, ErrInvalidDepth), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "red-color")
}

func TestTunablesFromAttributes(t *testing.T) {
	tn, err := TunablesFromAttributes(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tn, test.ShouldResemble, DefaultTunables())

	tn, err = TunablesFromAttributes(map[string]interface{}{
		"angle-tolerance": 3,
		"search-depth":    "9",
		"weights":         map[string]interface{}{"three": 50},
		"yellow-color":    map[string]interface{}{"hue-min": 35.5},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tn.AngleTolerance, test.ShouldEqual, 3.0)
	test.That(t, tn.SearchDepth, test.ShouldEqual, 9)
	test.That(t, tn.Weights.Three, test.ShouldEqual, 50)
	test.That(t, tn.Weights.Two, test.ShouldEqual, DefaultTunables().Weights.Two)
	test.That(t, tn.YellowColor.HueMin, test.ShouldEqual, 35.5)
	test.That(t, tn.YellowColor.HueMax, test.ShouldEqual, DefaultTunables().YellowColor.HueMax)
	test.That(t, tn.MinTokenArea, test.ShouldEqual, DefaultTunables().MinTokenArea)

	_, err = TunablesFromAttributes(map[string]interface{}{"no-such-thing": 1})
	test.That(t, err, test.ShouldNotBeNil)
}
