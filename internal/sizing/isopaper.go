package sizing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ISO 216/269 tables, millimeters. Element n is the long edge of rank n; the
// short edge is element n+1.
var (
	aLengths = []float64{1189, 841, 594, 420, 297, 210, 148, 105, 74, 52, 37, 26, 18, 13, 9}
	bLengths = []float64{1414, 1000, 707, 500, 353, 250, 176, 125, 88, 62, 44, 31, 22, 15, 11}
	cLengths = []float64{1297, 917, 648, 458, 324, 229, 162, 114, 81, 57, 40, 28, 20, 14, 10}
)

// MaxIsoRank is the largest supported rank for every series.
const MaxIsoRank = 13

// IsoSeries selects one of the ISO paper series.
type IsoSeries int

const (
	SeriesA IsoSeries = iota
	SeriesB
	SeriesC
)

func (s IsoSeries) String() string {
	switch s {
	case SeriesA:
		return "A"
	case SeriesB:
		return "B"
	case SeriesC:
		return "C"
	}
	return "?"
}

func (s IsoSeries) table() []float64 {
	switch s {
	case SeriesB:
		return bLengths
	case SeriesC:
		return cLengths
	}
	return aLengths
}

// IsoPaper is a standard paper size. Non-transposed orientation is portrait:
// short edge horizontal, long edge vertical.
type IsoPaper struct {
	Series     IsoSeries
	Rank       int
	Transposed bool
}

// NewIsoPaper panics on an out-of-range rank; parsed input goes through
// ParseIsoPaper which validates instead.
func NewIsoPaper(series IsoSeries, rank int, transposed bool) IsoPaper {
	if rank < 0 || rank > MaxIsoRank {
		panic(fmt.Sprintf("sizing: ISO 216 rank out of range: %d", rank))
	}
	return IsoPaper{Series: series, Rank: rank, Transposed: transposed}
}

func A(rank int) IsoPaper { return NewIsoPaper(SeriesA, rank, false) }
func B(rank int) IsoPaper { return NewIsoPaper(SeriesB, rank, false) }
func C(rank int) IsoPaper { return NewIsoPaper(SeriesC, rank, false) }

func (p IsoPaper) short() Length {
	return FromMillimeters(p.Series.table()[p.Rank+1])
}

func (p IsoPaper) long() Length {
	return FromMillimeters(p.Series.table()[p.Rank])
}

func (p IsoPaper) HorizontalLength() Length {
	if p.Transposed {
		return p.long()
	}
	return p.short()
}

func (p IsoPaper) VerticalLength() Length {
	if p.Transposed {
		return p.short()
	}
	return p.long()
}

func (p IsoPaper) TransposedPaper() IsoPaper {
	p.Transposed = !p.Transposed
	return p
}

func (p IsoPaper) ToCustomSize() CustomSize {
	return CustomSize{Horizontal: p.HorizontalLength(), Vertical: p.VerticalLength()}
}

// IsoName renders the designator, e.g. "A4" or "^B5" when transposed.
func (p IsoPaper) IsoName() string {
	prefix := ""
	if p.Transposed {
		prefix = "^"
	}
	return fmt.Sprintf("%s%s%d", prefix, p.Series, p.Rank)
}

func (p IsoPaper) String() string { return p.IsoName() }

// Anchored to the whole trimmed input so custom sizes with unit letters next
// to digits ("12m x 22m") never look ISO-shaped.
var isoRe = regexp.MustCompile(`(?i)^(?P<Transposed>\^\s*)?(?P<Series>[A-Z])\s*(?P<Rank>-?\d{1,2})$`)

// ParseIsoPaper parses an ISO designator like "a4", "B 5" or "^C3".
// ErrNotIsoPaper signals that the input should be tried as a custom size.
func ParseIsoPaper(text string) (IsoPaper, error) {
	m := isoRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return IsoPaper{}, ErrNotIsoPaper
	}
	groups := map[string]string{}
	for i, name := range isoRe.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	rank, err := strconv.Atoi(groups["Rank"])
	if err != nil || rank < 0 || rank > MaxIsoRank {
		return IsoPaper{}, fmt.Errorf("%w: %s", ErrInvalidIsoRank, groups["Rank"])
	}
	var series IsoSeries
	switch strings.ToUpper(groups["Series"]) {
	case "A":
		series = SeriesA
	case "B":
		series = SeriesB
	case "C":
		series = SeriesC
	default:
		return IsoPaper{}, fmt.Errorf("%w: %q", ErrInvalidIsoSeries, groups["Series"])
	}
	return IsoPaper{Series: series, Rank: rank, Transposed: groups["Transposed"] != ""}, nil
}
