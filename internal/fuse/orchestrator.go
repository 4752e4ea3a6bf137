package fuse

import (
	log "github.com/sirupsen/logrus"

	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

// Run drives the whole pipeline: partition classified inputs, optionally
// start the office conversion worker, preload images and PDFs, size image
// pages, documentize, and merge into the output file.
//
// The input list must be sorted by index; that is a precondition, not a
// recoverable condition.
func Run(sources []utils.Indexed[params.SourcePath], p params.Parameters, progress *utils.Progress) (MergeReport, error) {
	if !utils.IsSortedByIndex(sources) {
		return MergeReport{}, ErrUnsortedInput
	}

	requirement := DecideGuideRequirement(sources, p)
	log.WithField("branch", requirement.String()).Debug("pre-load branch decision")

	var imagePaths, pdfPaths, officePaths []utils.Indexed[string]
	for _, src := range sources {
		path := utils.MapIndexed(src, func(sp params.SourcePath) string { return sp.Path })
		switch src.Value().Kind {
		case params.KindImage:
			imagePaths = append(imagePaths, path)
		case params.KindPdf:
			pdfPaths = append(pdfPaths, path)
		case params.KindOffice:
			officePaths = append(officePaths, path)
		}
	}

	// the only background thread of the pipeline
	officeTask := StartOfficeConversion(officePaths, p, progress)

	loaded := make([]IndexedResult, 0, len(pdfPaths)+len(imagePaths))
	for i, path := range pdfPaths {
		loaded = append(loaded, preloadPdf(path))
		progress.Step("load pdf", i+1, len(pdfPaths))
	}
	for i, path := range imagePaths {
		loaded = append(loaded, preloadImage(path))
		progress.Step("load image", i+1, len(imagePaths))
	}
	utils.SortIndexed(loaded)

	var documents []IndexedDocument
	switch requirement {
	case WaitForOfficeConversion:
		// image sizes may depend on converted documents: join first, build
		// one guide over the union, documentize once
		union := append(loaded, officeTask.Join()...)
		utils.SortIndexed(union)
		guide := NewSizeGuide(union, p)
		documents = Documentize(union, guide, p)
	default:
		// images depend only on what is already loaded; conversion overlaps
		guide := NewSizeGuide(loaded, p)
		documents = Documentize(loaded, guide, p)
		converted := officeTask.Join()
		officeGuide := NewSizeGuide(converted, p)
		documents = append(documents, Documentize(converted, officeGuide, p)...)
	}

	utils.SortIndexed(documents)
	report, err := MergeDocuments(documents, p.OutputFile, p.Bookmarks)
	if err != nil {
		return report, err
	}
	if report.ErrorCount > 0 {
		log.WithFields(log.Fields{
			"count": report.ErrorCount, "indices": report.ErrorIndices,
		}).Warn("some inputs were skipped")
	}
	return report, nil
}

func preloadImage(path utils.Indexed[string]) IndexedResult {
	img, err := LoadImage(path.Value())
	if err != nil {
		return errResult(path.Index(), err)
	}
	return okImage(path.Index(), img)
}

func preloadPdf(path utils.Indexed[string]) IndexedResult {
	doc, err := LoadDocument(path.Value())
	if err != nil {
		return errResult(path.Index(), err)
	}
	return okDocument(path.Index(), doc)
}
