package sizing

import (
	"fmt"
	"regexp"
	"strconv"
)

// Length is a physical length stored canonically in millimeters.
type Length struct {
	mm float64
}

// Zero is the distinguished zero length.
func Zero() Length { return Length{} }

func FromUnit(value float64, unit Unit) Length {
	return Length{mm: ChangeUnit(value, unit, Millimeter)}
}

func FromMillimeters(v float64) Length { return FromUnit(v, Millimeter) }
func FromCentimeters(v float64) Length { return FromUnit(v, Centimeter) }
func FromMeters(v float64) Length      { return FromUnit(v, Meter) }
func FromInches(v float64) Length      { return FromUnit(v, Inch) }
func FromPoints(v float64) Length      { return FromUnit(v, Point) }

func (l Length) AsUnit(unit Unit) float64 {
	return ChangeUnit(l.mm, Millimeter, unit)
}

func (l Length) Millimeters() float64 { return l.AsUnit(Millimeter) }
func (l Length) Centimeters() float64 { return l.AsUnit(Centimeter) }
func (l Length) Meters() float64      { return l.AsUnit(Meter) }
func (l Length) Inches() float64      { return l.AsUnit(Inch) }
func (l Length) Points() float64      { return l.AsUnit(Point) }

func (l Length) Add(o Length) Length      { return Length{mm: l.mm + o.mm} }
func (l Length) Sub(o Length) Length      { return Length{mm: l.mm - o.mm} }
func (l Length) Neg() Length              { return Length{mm: -l.mm} }
func (l Length) Mul(f float64) Length     { return Length{mm: l.mm * f} }
func (l Length) Div(f float64) Length     { return Length{mm: l.mm / f} }
func (l Length) Ratio(o Length) float64   { return l.mm / o.mm }
func (l Length) LessEq(o Length) bool     { return l.mm <= o.mm }
func (l Length) IsPositive() bool         { return l.mm > 0 }
func (l Length) AsUnitString(u Unit) string {
	return fmt.Sprintf("%v %s", l.AsUnit(u), u.Symbol())
}

func (l Length) String() string {
	return l.AsUnitString(Millimeter)
}

// MarshalYAML serializes through the grammar so config files stay editable.
func (l Length) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

func (l *Length) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseLength(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

var lengthRe = regexp.MustCompile(`(?i)(?P<Value>[\d.]+)\s*(?P<Unit>[A-Z]+)?`)

// lengthToken is one parsed length plus where parsing stopped, so the
// two-length grammar can resume on the remaining text.
type lengthToken struct {
	value Length
	unit  Unit
	end   int
}

// parseLengthToken reads one `<decimal> <unit>?` from text. When the unit is
// missing, defaultUnit fills in; with no default either, a zero value is
// allowed unitless and anything else is an error.
func parseLengthToken(text string, defaultUnit *Unit) (lengthToken, error) {
	m := lengthRe.FindStringSubmatchIndex(text)
	if m == nil {
		return lengthToken{}, ErrNoValue
	}
	valueStr := text[m[2]:m[3]]
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return lengthToken{}, ErrNoValue
	}
	unitStr := ""
	if m[4] >= 0 {
		unitStr = text[m[4]:m[5]]
	}
	var unit Unit
	switch {
	case unitStr != "" && defaultUnit != nil:
		u, err := ParseUnit(unitStr)
		if err != nil {
			u = *defaultUnit
		}
		unit = u
	case unitStr != "":
		u, err := ParseUnit(unitStr)
		if err != nil {
			return lengthToken{}, err
		}
		unit = u
	case defaultUnit != nil:
		unit = *defaultUnit
	case value == 0:
		// zero is zero in every unit
		unit = Millimeter
	default:
		return lengthToken{}, ErrNoUnit
	}
	return lengthToken{value: FromUnit(value, unit), unit: unit, end: m[1]}, nil
}

// ParseLength parses a standalone length literal, e.g. "21.37 cm".
func ParseLength(text string) (Length, error) {
	tok, err := parseLengthToken(text, nil)
	if err != nil {
		return Length{}, err
	}
	return tok.value, nil
}
