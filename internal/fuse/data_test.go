package fuse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrokostam/PDFuse/internal/pdf"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
)

func TestLoadImagePng(t *testing.T) {
	dir := t.TempDir()
	path := writePng(t, dir, "a.png", 12, 34)
	li, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 12, li.Width())
	assert.Equal(t, 34, li.Height())
	assert.Equal(t, RGBA8, li.Color)
	assert.Equal(t, path, li.SourcePath)
}

func TestLoadImageUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-an-image.png")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err := LoadImage(path)
	var dle *DocumentLoadError
	require.ErrorAs(t, err, &dle)
	require.NotNil(t, dle.InvalidImage)
	assert.Empty(t, dle.InvalidImage.PixelType)
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "nope.png"))
	var dle *DocumentLoadError
	require.ErrorAs(t, err, &dle)
	assert.Error(t, dle.Io)
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := writePdf(t, dir, "doc.pdf", sizing.CustomFromPoints(612, 792))
	ld, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ld.PageCount())

	size, ok := ld.PageSize()
	require.True(t, ok)
	assert.InDelta(t, 612, size.Horizontal.Points(), 0.5)
	assert.InDelta(t, 792, size.Vertical.Points(), 0.5)
}

func TestLoadDocumentInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.5 but nothing else"), 0o644))
	_, err := LoadDocument(path)
	var dle *DocumentLoadError
	require.ErrorAs(t, err, &dle)
	assert.Error(t, dle.InvalidFile)
}

func TestPageSizeSkipsDegenerateMediaBox(t *testing.T) {
	// first page has a zero-extent MediaBox, second a valid one
	doc := pdf.NewDocument("1.5")

	makePage := func(w, h float64) pdf.ObjectID {
		page := pdf.NewDictionary()
		page.Set("Type", pdf.Name("Page"))
		page.Set("MediaBox", pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Real(w), pdf.Real(h)})
		return doc.AddObject(page)
	}
	degenerate := makePage(0, 0)
	valid := makePage(240, 480)

	pages := pdf.NewDictionary()
	pages.Set("Type", pdf.Name("Pages"))
	pages.Set("Kids", pdf.Array{pdf.Reference(degenerate), pdf.Reference(valid)})
	pages.Set("Count", pdf.Integer(2))
	pagesID := doc.AddObject(pages)
	catalog := pdf.NewDictionary()
	catalog.Set("Type", pdf.Name("Catalog"))
	catalog.Set("Pages", pdf.Reference(pagesID))
	doc.Trailer.Set("Root", pdf.Reference(doc.AddObject(catalog)))

	ld := &LoadedDocument{Doc: doc, SourcePath: "synthetic.pdf"}
	size, ok := ld.PageSize()
	require.True(t, ok)
	assert.InDelta(t, 240, size.Horizontal.Points(), 0.5)
	assert.InDelta(t, 480, size.Vertical.Points(), 0.5)
}

func TestPageSizeNoneFound(t *testing.T) {
	doc := pdf.NewDocument("1.5")
	page := pdf.NewDictionary()
	page.Set("Type", pdf.Name("Page"))
	pageID := doc.AddObject(page)
	pages := pdf.NewDictionary()
	pages.Set("Type", pdf.Name("Pages"))
	pages.Set("Kids", pdf.Array{pdf.Reference(pageID)})
	pages.Set("Count", pdf.Integer(1))
	pagesID := doc.AddObject(pages)
	catalog := pdf.NewDictionary()
	catalog.Set("Type", pdf.Name("Catalog"))
	catalog.Set("Pages", pdf.Reference(pagesID))
	doc.Trailer.Set("Root", pdf.Reference(doc.AddObject(catalog)))

	ld := &LoadedDocument{Doc: doc, SourcePath: "synthetic.pdf"}
	_, ok := ld.PageSize()
	assert.False(t, ok)
}

func TestClassifyColorTypes(t *testing.T) {
	assert.Equal(t, RGBA8, classifyColor(solidImage(2, 2)))
}
