package fuse

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/pdf"
)

// MergeReport summarizes per-input failures; non-fatal by design.
type MergeReport struct {
	ErrorCount   int
	ErrorIndices []int
}

// MergeDocuments concatenates per-input documents into one PDF and writes it
// to outputPath. Input order defines page order. Per-item errors are
// collected and reported; a missing Catalog or Pages across the union of
// inputs aborts the merge and nothing is written.
func MergeDocuments(documents []IndexedDocument, outputPath string, bookmarks params.BookmarkMode) (MergeReport, error) {
	out, report, err := mergeToDocument(documents, bookmarks)
	if err != nil {
		return report, err
	}
	out.Compress()
	if err := out.Save(outputPath); err != nil {
		return report, err
	}
	return report, nil
}

func mergeToDocument(documents []IndexedDocument, bookmarks params.BookmarkMode) (*pdf.Document, MergeReport, error) {
	var report MergeReport
	out := pdf.NewDocument("1.5")
	pagesMap := map[pdf.ObjectID]pdf.Object{}
	objectsMap := map[pdf.ObjectID]pdf.Object{}

	nextID := 1
	for _, item := range documents {
		result := item.Value()
		if result.Err != nil {
			log.WithField("index", item.Index()).WithError(result.Err).Error("skipping failed input")
			report.ErrorCount++
			report.ErrorIndices = append(report.ErrorIndices, item.Index())
			continue
		}
		doc := result.Document.Doc
		doc.RenumberObjectsWith(nextID)
		nextID = doc.MaxID + 1

		for i, pageID := range doc.PageIDs() {
			if i == 0 {
				if title, ok := bookmarkTitle(bookmarks, item.Index(), result.Document.SourcePath); ok {
					out.AddBookmark(pdf.NewBookmark(title, [3]float64{0, 0, 1}, 0, pageID), 0)
				}
			}
			pageObj, err := doc.GetObject(pageID)
			if err != nil {
				continue
			}
			pagesMap[pageID] = pageObj
		}
		for id, obj := range doc.Objects {
			objectsMap[id] = obj
		}
	}

	// route every collected object by PDF type; iteration in strictly
	// increasing id order keeps renumbering and Kids reproducible
	var catalogID, pagesID *pdf.ObjectID
	var catalogDict, pagesDict *pdf.Dictionary
	for _, id := range pdf.SortedIDs(objectsMap) {
		obj := objectsMap[id]
		switch pdf.TypeName(obj) {
		case "Catalog":
			if catalogID == nil {
				idCopy := id
				catalogID = &idCopy
				if d, ok := pdf.DictOf(obj); ok {
					catalogDict = d.Clone()
				}
			}
		case "Pages":
			if d, ok := pdf.DictOf(obj); ok {
				merged := d.Clone()
				if pagesDict != nil {
					merged.Extend(pagesDict)
				}
				pagesDict = merged
			}
			if pagesID == nil {
				idCopy := id
				pagesID = &idCopy
			}
		case "Page":
			// pages are inserted separately from pagesMap
		case "Outlines", "Outline":
			// outlines are regenerated, never merged
		default:
			out.Set(id, obj)
		}
	}

	if pagesID == nil || pagesDict == nil {
		log.Error("merge aborted: no Pages object in any input")
		return nil, report, ErrNoPages
	}
	sortedPageIDs := pdf.SortedIDs(pagesMap)
	for _, id := range sortedPageIDs {
		dict, ok := pdf.DictOf(pagesMap[id])
		if !ok {
			continue
		}
		clone := dict.Clone()
		clone.Set("Parent", pdf.Reference(*pagesID))
		out.Set(id, clone)
	}

	if catalogID == nil || catalogDict == nil {
		log.Error("merge aborted: no Catalog object in any input")
		return nil, report, ErrNoCatalog
	}

	pagesDict.Set("Count", pdf.Integer(len(pagesMap)))
	kids := make(pdf.Array, len(sortedPageIDs))
	for i, id := range sortedPageIDs {
		kids[i] = pdf.Reference(id)
	}
	pagesDict.Set("Kids", kids)
	out.Set(*pagesID, pagesDict)

	catalogDict.Set("Pages", pdf.Reference(*pagesID))
	catalogDict.Remove("Outlines")
	out.Set(*catalogID, catalogDict)

	out.Trailer.Set("Root", pdf.Reference(*catalogID))
	out.MaxID = len(out.Objects)
	out.RenumberObjects()
	out.AdjustZeroPages()

	if rootOutline, ok := out.BuildOutline(); ok {
		rootID, _ := out.Trailer.GetReference("Root")
		if catalogObj, err := out.GetObject(rootID); err == nil {
			if d, ok := pdf.DictOf(catalogObj); ok {
				d.Set("Outlines", pdf.Reference(rootOutline))
			}
		}
	}
	return out, report, nil
}

func bookmarkTitle(mode params.BookmarkMode, index int, sourcePath string) (string, bool) {
	switch mode {
	case params.BookmarksIndex:
		return fmt.Sprintf("%d", index), true
	case params.BookmarksIndexName:
		return fmt.Sprintf("%d - %s", index, baseName(sourcePath)), true
	}
	return "", false
}
