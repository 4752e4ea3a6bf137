package sizing

import (
	"fmt"
	"math"
	"regexp"
)

// CustomSize is a free-form page size: horizontal by vertical extent.
type CustomSize struct {
	Horizontal Length
	Vertical   Length
}

func CustomFromMillimeters(h, v float64) CustomSize {
	return CustomSize{Horizontal: FromMillimeters(h), Vertical: FromMillimeters(v)}
}

func CustomFromCentimeters(h, v float64) CustomSize {
	return CustomSize{Horizontal: FromCentimeters(h), Vertical: FromCentimeters(v)}
}

func CustomFromMeters(h, v float64) CustomSize {
	return CustomSize{Horizontal: FromMeters(h), Vertical: FromMeters(v)}
}

func CustomFromInches(h, v float64) CustomSize {
	return CustomSize{Horizontal: FromInches(h), Vertical: FromInches(v)}
}

func CustomFromPoints(h, v float64) CustomSize {
	return CustomSize{Horizontal: FromPoints(h), Vertical: FromPoints(v)}
}

func (c CustomSize) Add(o CustomSize) CustomSize {
	return CustomSize{Horizontal: c.Horizontal.Add(o.Horizontal), Vertical: c.Vertical.Add(o.Vertical)}
}

func (c CustomSize) Sub(o CustomSize) CustomSize {
	return CustomSize{Horizontal: c.Horizontal.Sub(o.Horizontal), Vertical: c.Vertical.Sub(o.Vertical)}
}

func (c CustomSize) Mul(f float64) CustomSize {
	return CustomSize{Horizontal: c.Horizontal.Mul(f), Vertical: c.Vertical.Mul(f)}
}

func (c CustomSize) Div(f float64) CustomSize {
	return CustomSize{Horizontal: c.Horizontal.Div(f), Vertical: c.Vertical.Div(f)}
}

// Transposed swaps the axes.
func (c CustomSize) Transposed() CustomSize {
	return CustomSize{Horizontal: c.Vertical, Vertical: c.Horizontal}
}

// Fit returns the largest uniform scale s such that other*s fits within c on
// both axes.
func (c CustomSize) Fit(other CustomSize) float64 {
	x := c.Horizontal.Ratio(other.Horizontal)
	y := c.Vertical.Ratio(other.Vertical)
	return math.Min(x, y)
}

func (c CustomSize) ToCustomSize() CustomSize { return c }

func (c CustomSize) String() string {
	return fmt.Sprintf("%s x %s", c.Horizontal, c.Vertical)
}

func (c CustomSize) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *CustomSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseCustomSize(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// trailing unit token, if any; it becomes the default unit for the first
// length so "10 x 20 cm" reads both lengths in centimeters
var trailingUnitRe = regexp.MustCompile(`(?i)([A-Z]+)[\s;,]*$`)

// ParseCustomSize parses one or two length literals separated by 'x', '-' or
// whitespace. A single length yields a square; a missing unit borrows from
// the neighboring length.
func ParseCustomSize(text string) (CustomSize, error) {
	var lastUnit *Unit
	if m := trailingUnitRe.FindStringSubmatch(text); m != nil {
		if u, err := ParseUnit(m[1]); err == nil {
			lastUnit = &u
		} else {
			return CustomSize{}, err
		}
	}
	first, err := parseLengthToken(text, lastUnit)
	if err != nil {
		return CustomSize{}, err
	}
	rest := text[first.end:]
	second, err := parseLengthToken(rest, &first.unit)
	if err != nil {
		// single length: height equals width
		second = first
	}
	return CustomSize{Horizontal: first.value, Vertical: second.value}, nil
}
