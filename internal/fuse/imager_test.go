package fuse

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrokostam/PDFuse/internal/pdf"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
)

// solidImage builds an opaque RGBA bitmap.
func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func a4() sizing.CustomSize { return sizing.CustomFromMillimeters(210, 297) }

func TestAdjustToDpiNoUpscale(t *testing.T) {
	// A4 at 300 dpi allows ~2480x3508 px; a small image stays untouched
	img := solidImage(1000, 1000)
	out := adjustToDpi(img, a4(), 300)
	assert.Same(t, image.Image(img), out)
}

func TestAdjustToDpiDownscales(t *testing.T) {
	img := solidImage(5000, 7000)
	out := adjustToDpi(img, a4(), 300)
	maxW := int(a4().Horizontal.Inches() * 300)
	maxH := int(a4().Vertical.Inches() * 300)
	assert.LessOrEqual(t, out.Bounds().Dx(), maxW)
	assert.LessOrEqual(t, out.Bounds().Dy(), maxH)
	// the constraining axis lands on its budget within rounding
	hitsW := abs(out.Bounds().Dx()-maxW) <= 1
	hitsH := abs(out.Bounds().Dy()-maxH) <= 1
	assert.True(t, hitsW || hitsH, "neither axis reached the pixel budget")
	// aspect ratio preserved
	assert.InDelta(t, 5000.0/7000.0, float64(out.Bounds().Dx())/float64(out.Bounds().Dy()), 0.01)
}

func TestAdjustToDpiExceedsOnOneAxis(t *testing.T) {
	// wider than the budget, shorter than the page: still resized to fit
	img := solidImage(6000, 100)
	out := adjustToDpi(img, a4(), 300)
	maxW := int(a4().Horizontal.Inches() * 300)
	assert.LessOrEqual(t, out.Bounds().Dx(), maxW)
	assert.Less(t, out.Bounds().Dx(), 6000)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestImageTranslationCentersWithinMargin(t *testing.T) {
	page := sizing.CustomFromMillimeters(200, 100)
	margin := sizing.CustomFromMillimeters(20, 10)
	scaled := sizing.CustomFromMillimeters(90, 45)
	tr := imageTranslation(page, scaled, margin)
	// drawable is 180x90; leftover 90x45; half leftover 45x22.5 plus half
	// margin 10x5
	assert.InDelta(t, 55, tr.Horizontal.Millimeters(), 1e-6)
	assert.InDelta(t, 27.5, tr.Vertical.Millimeters(), 1e-6)
}

func TestImagerProducesExactPageSize(t *testing.T) {
	im := NewImager("t", a4(), 300, sizing.CustomSize{}, 90, true)
	li := &LoadedImage{Image: solidImage(100, 50), Color: RGBA8, SourcePath: "x.png"}
	require.NoError(t, im.AddImage(li))
	doc := im.Finalize()

	pages := doc.PageIDs()
	require.Len(t, pages, 1)
	obj, err := doc.GetObject(pages[0])
	require.NoError(t, err)
	d, _ := pdf.DictOf(obj)
	mb, ok := d.GetArray("MediaBox")
	require.True(t, ok)
	w, _ := pdf.AsFloat(mb[2])
	h, _ := pdf.AsFloat(mb[3])
	assert.InDelta(t, a4().Horizontal.Points(), w, 0.1)
	assert.InDelta(t, a4().Vertical.Points(), h, 0.1)
}

func TestImagerMultiplePages(t *testing.T) {
	im := NewImager("t", a4(), 150, sizing.CustomSize{}, 90, true)
	for i := 0; i < 3; i++ {
		li := &LoadedImage{Image: solidImage(10, 10), Color: RGBA8, SourcePath: "x.png"}
		require.NoError(t, im.AddImage(li))
	}
	assert.Equal(t, 3, im.PageCount())
	doc := im.Finalize()
	assert.Len(t, doc.PageIDs(), 3)
}

func TestImagerLosslessUsesFlate(t *testing.T) {
	im := NewImager("t", a4(), 300, sizing.CustomSize{}, 90, true)
	li := &LoadedImage{Image: solidImage(20, 20), Color: RGBA8, SourcePath: "x.png"}
	require.NoError(t, im.AddImage(li))
	doc := im.Finalize()
	filter := findImageFilter(t, doc)
	assert.Equal(t, pdf.Name("FlateDecode"), filter)
}

func TestImagerLossyUsesDct(t *testing.T) {
	im := NewImager("t", a4(), 300, sizing.CustomSize{}, 80, false)
	li := &LoadedImage{Image: solidImage(20, 20), Color: RGBA8, SourcePath: "x.png"}
	require.NoError(t, im.AddImage(li))
	doc := im.Finalize()
	filter := findImageFilter(t, doc)
	assert.Equal(t, pdf.Name("DCTDecode"), filter)
}

func TestImagerGrayscaleAlwaysFlate(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	im := NewImager("t", a4(), 300, sizing.CustomSize{}, 80, false)
	li := &LoadedImage{Image: gray, Color: L8, SourcePath: "x.png"}
	require.NoError(t, im.AddImage(li))
	doc := im.Finalize()
	filter := findImageFilter(t, doc)
	assert.Equal(t, pdf.Name("FlateDecode"), filter)
}

func TestImagerTransparencyGetsSMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: uint8(x * 30)})
		}
	}
	im := NewImager("t", a4(), 300, sizing.CustomSize{}, 90, true)
	li := &LoadedImage{Image: img, Color: RGBA8, SourcePath: "x.png"}
	require.NoError(t, im.AddImage(li))
	doc := im.Finalize()

	base := findImageObject(t, doc, false)
	_, hasMask := base.Dict.GetReference("SMask")
	assert.True(t, hasMask)
}

// findImageObject returns the base image XObject, skipping soft masks.
func findImageObject(t *testing.T, doc *pdf.Document, _ bool) *pdf.Stream {
	t.Helper()
	masks := map[pdf.ObjectID]bool{}
	var images []*pdf.Stream
	var ids []pdf.ObjectID
	for _, id := range pdf.SortedIDs(doc.Objects) {
		stream, ok := doc.Objects[id].(*pdf.Stream)
		if !ok {
			continue
		}
		if sub, _ := stream.Dict.GetName("Subtype"); sub != "Image" {
			continue
		}
		if maskRef, ok := stream.Dict.GetReference("SMask"); ok {
			masks[maskRef] = true
		}
		images = append(images, stream)
		ids = append(ids, id)
	}
	for i, stream := range images {
		if !masks[ids[i]] {
			return stream
		}
	}
	t.Fatal("no image XObject found")
	return nil
}

func findImageFilter(t *testing.T, doc *pdf.Document) pdf.Name {
	t.Helper()
	f, _ := findImageObject(t, doc, false).Dict.GetName("Filter")
	return f
}

func TestUpscaleNeverHappens(t *testing.T) {
	// pixel dimensions that already fit the budget keep the original bitmap
	im := NewImager("t", a4(), 300, sizing.CustomSize{}, 90, true)
	small := solidImage(100, 100)
	li := &LoadedImage{Image: small, Color: RGBA8, SourcePath: "x.png"}
	require.NoError(t, im.AddImage(li))
	doc := im.Finalize()
	base := findImageObject(t, doc, false)
	w, _ := base.Dict.GetInt("Width")
	h, _ := base.Dict.GetInt("Height")
	assert.Equal(t, int64(100), w)
	assert.Equal(t, int64(100), h)
}
