package fuse

import (
	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

// GuideRequirement is the pre-load branch decision: whether image pages can
// be sized without waiting for the office conversion results.
type GuideRequirement int

const (
	// SizeInformationNotNeeded: every image uses the fallback size, or
	// there is nothing to size.
	SizeInformationNotNeeded GuideRequirement = iota
	// WaitForOfficeConversion: some office input precedes an image, so the
	// image's page size may depend on the converted document.
	WaitForOfficeConversion
	// RunInParallelWithOfficeConversion: office inputs exist but none
	// precedes any image; conversion overlaps with image loading.
	RunInParallelWithOfficeConversion
)

func (g GuideRequirement) String() string {
	switch g {
	case SizeInformationNotNeeded:
		return "size information not needed"
	case WaitForOfficeConversion:
		return "wait for office conversion"
	case RunInParallelWithOfficeConversion:
		return "run in parallel with office conversion"
	}
	return "unknown"
}

// DecideGuideRequirement inspects the classified input list before anything
// is loaded. Images inherit the page size of the most recent preceding
// document whose size is known, so the answer depends only on relative
// ordering of image and office entries.
func DecideGuideRequirement(sources []utils.Indexed[params.SourcePath], p params.Parameters) GuideRequirement {
	if p.ForceImagePageFallbackSize {
		return SizeInformationNotNeeded
	}
	hasImage := false
	hasOffice := false
	officeBeforeImage := false
	for _, src := range sources {
		switch src.Value().Kind {
		case params.KindImage:
			hasImage = true
			if hasOffice {
				officeBeforeImage = true
			}
		case params.KindOffice:
			hasOffice = true
		}
	}
	switch {
	case !hasImage:
		return SizeInformationNotNeeded
	case !hasOffice:
		return SizeInformationNotNeeded
	case officeBeforeImage:
		return WaitForOfficeConversion
	default:
		return RunInParallelWithOfficeConversion
	}
}

// SizeGuide assigns a target page size to every input index: the size of the
// most recent document at or before the index whose page size is known, or
// the fallback.
type SizeGuide struct {
	guide    []sizing.CustomSize
	fallback sizing.CustomSize
}

// NewSizeGuide walks the loaded items in index order and fills the guide.
// Items must cover the index range of interest; indices beyond the walked
// range resolve to the fallback.
func NewSizeGuide(allData []IndexedResult, p params.Parameters) *SizeGuide {
	fallback := p.ImagePageFallbackSize.ToCustomSize()
	if p.ForceImagePageFallbackSize || len(allData) == 0 {
		return &SizeGuide{fallback: fallback}
	}
	maxIndex := 0
	for _, item := range allData {
		if item.Index() > maxIndex {
			maxIndex = item.Index()
		}
	}
	n := maxIndex + 1
	guide := make([]sizing.CustomSize, n)
	sorted := append([]IndexedResult(nil), allData...)
	utils.SortIndexed(sorted)
	lastIndex := 0
	lastSize := fallback
	for _, item := range sorted {
		if item.Value().Err != nil {
			continue
		}
		doc := item.Value().Data.Document
		if doc == nil {
			continue
		}
		size, ok := doc.PageSize()
		if !ok {
			// no usable MediaBox: the previous size stays in effect
			continue
		}
		fill(guide, lastIndex, item.Index(), lastSize)
		lastIndex = item.Index()
		lastSize = size
	}
	fill(guide, lastIndex, n, lastSize)
	return &SizeGuide{guide: guide, fallback: fallback}
}

func fill(guide []sizing.CustomSize, from, to int, size sizing.CustomSize) {
	for i := from; i < to && i < len(guide); i++ {
		guide[i] = size
	}
}

// GetSize returns the page size for an input index.
func (g *SizeGuide) GetSize(index int) sizing.CustomSize {
	if index >= 0 && index < len(g.guide) {
		return g.guide[index]
	}
	return g.fallback
}

// Fallback exposes the configured fallback size.
func (g *SizeGuide) Fallback() sizing.CustomSize { return g.fallback }
