package fuse

import (
	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

// DocumentResult is one documentized input: a per-input document or the
// error carried through from loading.
type DocumentResult struct {
	Document *LoadedDocument
	Err      error
}

// IndexedDocument is the merger's input unit.
type IndexedDocument = utils.Indexed[DocumentResult]

// Documentize turns every loaded input into a per-input document: documents
// pass through, images are rendered via a fresh single-page Imager sized by
// the guide. Items are independent, so the stage runs on the parallel pool
// and re-sorts by index on exit.
func Documentize(items []IndexedResult, guide *SizeGuide, p params.Parameters) []IndexedDocument {
	return utils.ParallelMap(items, func(item IndexedResult) IndexedDocument {
		return utils.MapIndexed(item, func(r Result) DocumentResult {
			return documentizeOne(item.Index(), r, guide, p)
		})
	})
}

func documentizeOne(index int, r Result, guide *SizeGuide, p params.Parameters) DocumentResult {
	if r.Err != nil {
		return DocumentResult{Err: r.Err}
	}
	if r.Data.Document != nil {
		return DocumentResult{Document: r.Data.Document}
	}
	img := r.Data.Image
	imager := NewImager(baseName(img.SourcePath), guide.GetSize(index), p.ImageDpi, p.Margin,
		p.ImageQuality, p.ImageLosslessCompression)
	if err := imager.AddImage(img); err != nil {
		return DocumentResult{Err: err}
	}
	return DocumentResult{Document: &LoadedDocument{Doc: imager.Finalize(), SourcePath: img.SourcePath}}
}

// DocumentizeSequential is the strictly-sequential variant that coalesces
// consecutive images into one multi-page document sharing a single Imager.
// The emitted document takes the run's first index, so the output is still a
// sorted per-index sequence with the same page order. Exercised by tests;
// the parallel mode is normative.
func DocumentizeSequential(items []IndexedResult, guide *SizeGuide, p params.Parameters) []IndexedDocument {
	sorted := append([]IndexedResult(nil), items...)
	utils.SortIndexed(sorted)

	var out []IndexedDocument
	var imager *Imager
	runStart := 0
	var runPath string

	flush := func() {
		if imager == nil {
			return
		}
		if imager.PageCount() == 0 {
			// a run whose only image failed to encode emits nothing
			imager = nil
			return
		}
		out = append(out, utils.NewIndexed(runStart, DocumentResult{
			Document: &LoadedDocument{Doc: imager.Finalize(), SourcePath: runPath},
		}))
		imager = nil
	}

	for _, item := range sorted {
		r := item.Value()
		if r.Err != nil {
			flush()
			out = append(out, utils.NewIndexed(item.Index(), DocumentResult{Err: r.Err}))
			continue
		}
		if r.Data.Document != nil {
			flush()
			out = append(out, utils.NewIndexed(item.Index(), DocumentResult{Document: r.Data.Document}))
			continue
		}
		img := r.Data.Image
		if imager == nil {
			imager = NewImager(baseName(img.SourcePath), guide.GetSize(item.Index()), p.ImageDpi,
				p.Margin, p.ImageQuality, p.ImageLosslessCompression)
			runStart = item.Index()
			runPath = img.SourcePath
		} else {
			imager.SetPageSize(guide.GetSize(item.Index()))
		}
		if err := imager.AddImage(img); err != nil {
			flush()
			out = append(out, utils.NewIndexed(item.Index(), DocumentResult{Err: err}))
		}
	}
	flush()
	return out
}
