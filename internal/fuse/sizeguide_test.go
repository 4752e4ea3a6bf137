package fuse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

func indexedSources(kinds ...params.SourceKind) []utils.Indexed[params.SourcePath] {
	out := make([]utils.Indexed[params.SourcePath], len(kinds))
	for i, k := range kinds {
		out[i] = utils.NewIndexed(i, params.SourcePath{Kind: k, Path: "x"})
	}
	return out
}

func TestDecideGuideRequirement(t *testing.T) {
	img := params.KindImage
	pdfK := params.KindPdf
	office := params.KindOffice

	base := params.DefaultParameters()

	cases := []struct {
		name  string
		kinds []params.SourceKind
		force bool
		want  GuideRequirement
	}{
		{"force overrides everything", []params.SourceKind{office, img}, true, SizeInformationNotNeeded},
		{"only images", []params.SourceKind{img, img, img}, false, SizeInformationNotNeeded},
		{"no images", []params.SourceKind{pdfK, office, pdfK}, false, SizeInformationNotNeeded},
		{"images but no office", []params.SourceKind{img, pdfK, img}, false, SizeInformationNotNeeded},
		{"office before image", []params.SourceKind{office, img}, false, WaitForOfficeConversion},
		{"office between images", []params.SourceKind{img, office, img}, false, WaitForOfficeConversion},
		{"office only after images", []params.SourceKind{img, img, office}, false, RunInParallelWithOfficeConversion},
		{"pdf after images office last", []params.SourceKind{img, pdfK, office}, false, RunInParallelWithOfficeConversion},
		{"empty list", nil, false, SizeInformationNotNeeded},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := base
			p.ForceImagePageFallbackSize = c.force
			got := DecideGuideRequirement(indexedSources(c.kinds...), p)
			assert.Equal(t, c.want, got)
		})
	}
}

// docResultWithPage fabricates a loaded document whose single page reports
// the given size.
func docResultWithPage(t *testing.T, index int, size sizing.CustomSize) IndexedResult {
	t.Helper()
	im := NewImager("probe", size, 72, sizing.CustomSize{}, 90, true)
	img := solidImage(8, 8)
	li := &LoadedImage{Image: img, Color: RGBA8, SourcePath: "probe.png"}
	if err := im.AddImage(li); err != nil {
		t.Fatal(err)
	}
	return okDocument(index, &LoadedDocument{Doc: im.Finalize(), SourcePath: "probe.pdf"})
}

func imageResult(index int) IndexedResult {
	return okImage(index, &LoadedImage{Image: solidImage(4, 4), Color: RGBA8, SourcePath: "img.png"})
}

func TestSizeGuideAllFallback(t *testing.T) {
	p := params.DefaultParameters()
	items := []IndexedResult{imageResult(0), imageResult(1)}
	guide := NewSizeGuide(items, p)
	a4 := sizing.CustomFromMillimeters(210, 297)
	assert.Equal(t, a4, guide.GetSize(0))
	assert.Equal(t, a4, guide.GetSize(1))
	// out of range falls back too
	assert.Equal(t, a4, guide.GetSize(99))
}

func TestSizeGuideInheritsPrecedingDocument(t *testing.T) {
	p := params.DefaultParameters()
	letter := sizing.CustomFromPoints(612, 792)
	items := []IndexedResult{
		imageResult(0),
		docResultWithPage(t, 1, letter),
		imageResult(2),
		imageResult(3),
	}
	guide := NewSizeGuide(items, p)

	fallback := p.ImagePageFallbackSize.ToCustomSize()
	assert.Equal(t, fallback, guide.GetSize(0), "no document at or before index 0")
	got := guide.GetSize(2)
	assert.InDelta(t, letter.Horizontal.Points(), got.Horizontal.Points(), 0.1)
	assert.InDelta(t, letter.Vertical.Points(), got.Vertical.Points(), 0.1)
	assert.Equal(t, guide.GetSize(2), guide.GetSize(3))
}

func TestSizeGuideLatestDocumentWins(t *testing.T) {
	p := params.DefaultParameters()
	small := sizing.CustomFromMillimeters(100, 100)
	large := sizing.CustomFromMillimeters(300, 300)
	items := []IndexedResult{
		docResultWithPage(t, 0, small),
		docResultWithPage(t, 1, large),
		imageResult(2),
	}
	guide := NewSizeGuide(items, p)
	got := guide.GetSize(2)
	assert.InDelta(t, large.Horizontal.Millimeters(), got.Horizontal.Millimeters(), 0.5)
}

func TestSizeGuideErrorsIgnored(t *testing.T) {
	p := params.DefaultParameters()
	items := []IndexedResult{
		errResult(0, &DocumentLoadError{Path: "broken.pdf", InvalidFile: assert.AnError}),
		imageResult(1),
	}
	guide := NewSizeGuide(items, p)
	assert.Equal(t, p.ImagePageFallbackSize.ToCustomSize(), guide.GetSize(1))
}

func TestSizeGuideForcedFallback(t *testing.T) {
	p := params.DefaultParameters()
	p.ForceImagePageFallbackSize = true
	letter := sizing.CustomFromPoints(612, 792)
	items := []IndexedResult{docResultWithPage(t, 0, letter), imageResult(1)}
	guide := NewSizeGuide(items, p)
	assert.Equal(t, p.ImagePageFallbackSize.ToCustomSize(), guide.GetSize(1))
}
