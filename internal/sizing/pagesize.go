package sizing

import "errors"

// PageSize is either a standard ISO paper or a custom size.
type PageSize struct {
	iso    *IsoPaper
	custom *CustomSize
}

func Standard(p IsoPaper) PageSize { return PageSize{iso: &p} }

func Custom(c CustomSize) PageSize { return PageSize{custom: &c} }

func DefaultPageSize() PageSize { return Standard(A(4)) }

func (p PageSize) IsStandard() bool { return p.iso != nil }

func (p PageSize) ToCustomSize() CustomSize {
	if p.iso != nil {
		return p.iso.ToCustomSize()
	}
	if p.custom != nil {
		return *p.custom
	}
	return DefaultPageSize().ToCustomSize()
}

func (p PageSize) Transposed() PageSize {
	if p.iso != nil {
		return Standard(p.iso.TransposedPaper())
	}
	return Custom(p.ToCustomSize().Transposed())
}

func (p PageSize) String() string {
	if p.iso != nil {
		return p.iso.IsoName()
	}
	return p.ToCustomSize().String()
}

// ParsePageSize tries the ISO designator grammar first and falls through to
// the custom-size grammar only when the input is not ISO-shaped at all; a
// malformed ISO designator (bad rank) stays an error.
func ParsePageSize(text string) (PageSize, error) {
	iso, err := ParseIsoPaper(text)
	if err == nil {
		return Standard(iso), nil
	}
	if !errors.Is(err, ErrNotIsoPaper) {
		return PageSize{}, err
	}
	custom, err := ParseCustomSize(text)
	if err != nil {
		return PageSize{}, err
	}
	return Custom(custom), nil
}

func (p PageSize) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *PageSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParsePageSize(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
