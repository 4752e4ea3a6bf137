package fuse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

func TestDocumentizePassThrough(t *testing.T) {
	p := params.DefaultParameters()
	docItem := docResultWithPage(t, 0, sizing.CustomFromMillimeters(100, 100))
	loadErr := &DocumentLoadError{Path: "x.pdf", InvalidFile: assert.AnError}
	items := []IndexedResult{docItem, errResult(1, loadErr)}

	guide := NewSizeGuide(items, p)
	out := Documentize(items, guide, p)
	require.Len(t, out, 2)

	assert.Equal(t, 0, out[0].Index())
	require.NoError(t, out[0].Value().Err)
	assert.Same(t, docItem.Value().Data.Document, out[0].Value().Document)

	assert.Equal(t, 1, out[1].Index())
	assert.Same(t, error(loadErr), out[1].Value().Err)
}

func TestDocumentizeRendersImages(t *testing.T) {
	p := params.DefaultParameters()
	items := []IndexedResult{imageResult(0), imageResult(1)}
	guide := NewSizeGuide(items, p)
	out := Documentize(items, guide, p)
	require.Len(t, out, 2)
	for i, item := range out {
		assert.Equal(t, i, item.Index())
		require.NoError(t, item.Value().Err)
		require.NotNil(t, item.Value().Document)
		assert.Equal(t, 1, item.Value().Document.PageCount())
	}
}

func TestDocumentizeUsesGuideSize(t *testing.T) {
	p := params.DefaultParameters()
	letter := sizing.CustomFromPoints(612, 792)
	items := []IndexedResult{
		docResultWithPage(t, 0, letter),
		imageResult(1),
	}
	guide := NewSizeGuide(items, p)
	out := Documentize(items, guide, p)
	require.Len(t, out, 2)

	imageDoc := out[1].Value().Document
	require.NotNil(t, imageDoc)
	size, ok := imageDoc.PageSize()
	require.True(t, ok)
	assert.InDelta(t, letter.Horizontal.Points(), size.Horizontal.Points(), 0.5)
	assert.InDelta(t, letter.Vertical.Points(), size.Vertical.Points(), 0.5)
}

func TestDocumentizeSequentialCoalesces(t *testing.T) {
	utils.Sequential = true
	defer func() { utils.Sequential = false }()

	p := params.DefaultParameters()
	items := []IndexedResult{
		imageResult(0),
		imageResult(1),
		docResultWithPage(t, 2, sizing.CustomFromMillimeters(100, 100)),
		imageResult(3),
	}
	guide := NewSizeGuide(items, p)
	out := DocumentizeSequential(items, guide, p)

	// two consecutive images coalesce into one document at index 0
	require.Len(t, out, 3)
	assert.Equal(t, 0, out[0].Index())
	assert.Equal(t, 2, out[0].Value().Document.PageCount())
	assert.Equal(t, 2, out[1].Index())
	assert.Equal(t, 3, out[2].Index())
	assert.Equal(t, 1, out[2].Value().Document.PageCount())

	// the total page count matches the parallel mode's
	parallel := Documentize(items, guide, p)
	var parallelPages, coalescedPages int
	for _, d := range parallel {
		if d.Value().Document != nil {
			parallelPages += d.Value().Document.PageCount()
		}
	}
	for _, d := range out {
		if d.Value().Document != nil {
			coalescedPages += d.Value().Document.PageCount()
		}
	}
	assert.Equal(t, parallelPages, coalescedPages)
}

func TestDocumentizeSequentialErrorBreaksRun(t *testing.T) {
	utils.Sequential = true
	defer func() { utils.Sequential = false }()

	p := params.DefaultParameters()
	loadErr := &DocumentLoadError{Path: "x.png", InvalidImage: &ImageLoadError{Path: "x.png"}}
	items := []IndexedResult{
		imageResult(0),
		errResult(1, loadErr),
		imageResult(2),
	}
	guide := NewSizeGuide(items, p)
	out := DocumentizeSequential(items, guide, p)
	require.Len(t, out, 3)
	assert.Equal(t, 0, out[0].Index())
	assert.Equal(t, 1, out[0].Value().Document.PageCount())
	assert.Error(t, out[1].Value().Err)
	assert.Equal(t, 2, out[2].Index())
}
