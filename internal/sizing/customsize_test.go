package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomSize(t *testing.T) {
	cases := []struct {
		text string
		want CustomSize
	}{
		{"12.3437m-22.3437m", CustomFromMeters(12.3437, 22.3437)},
		{" 12.3437m x 22.3437m ", CustomFromMeters(12.3437, 22.3437)},
		{" 12.3437m ", CustomFromMeters(12.3437, 12.3437)},
		{" 12.3437 x 22.3437m ", CustomFromMeters(12.3437, 22.3437)},
		{" 12.3437m x 22.3437 ", CustomFromMeters(12.3437, 22.3437)},
		{" 12.3437  22.3437m ", CustomFromMeters(12.3437, 22.3437)},
		{" 12.3437 mm 22.3437pt ", CustomSize{Horizontal: FromMillimeters(12.3437), Vertical: FromPoints(22.3437)}},
		{" 12.3437 mm x 22.3437pt ", CustomSize{Horizontal: FromMillimeters(12.3437), Vertical: FromPoints(22.3437)}},
	}
	for _, c := range cases {
		got, err := ParseCustomSize(c.text)
		require.NoError(t, err, "parsing %q", c.text)
		assert.Equal(t, c.want, got, "parsing %q", c.text)
	}
}

func TestFit(t *testing.T) {
	a4 := CustomFromMillimeters(210, 297)
	assert.InDelta(t, 1.0, a4.Fit(a4), 1e-9)

	half := CustomFromMillimeters(105, 148.5)
	assert.InDelta(t, 2.0, a4.Fit(half), 1e-9)

	// limited by the wider axis
	wide := CustomFromMillimeters(420, 100)
	assert.InDelta(t, 0.5, a4.Fit(wide), 1e-9)

	// scaled size fits inside the container on both axes
	s := a4.Fit(wide)
	scaled := wide.Mul(s)
	assert.True(t, scaled.Horizontal.LessEq(a4.Horizontal))
	assert.True(t, scaled.Vertical.LessEq(a4.Vertical))
}

func TestTransposeInvolution(t *testing.T) {
	c := CustomFromMillimeters(100, 200)
	assert.Equal(t, c, c.Transposed().Transposed())
	assert.Equal(t, CustomFromMillimeters(200, 100), c.Transposed())
}

func TestCustomSizeAlgebra(t *testing.T) {
	a := CustomFromMillimeters(100, 200)
	b := CustomFromMillimeters(10, 20)
	assert.Equal(t, CustomFromMillimeters(110, 220), a.Add(b))
	assert.Equal(t, CustomFromMillimeters(90, 180), a.Sub(b))
	assert.Equal(t, CustomFromMillimeters(200, 400), a.Mul(2))
	assert.Equal(t, CustomFromMillimeters(50, 100), a.Div(2))
}
