package params

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// SourceKind tags a classified input path.
type SourceKind int

const (
	// KindImage is a raster image handled by the image loader.
	KindImage SourceKind = iota
	// KindPdf is parsed directly.
	KindPdf
	// KindOffice needs the external office-suite converter first.
	KindOffice
)

func (k SourceKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPdf:
		return "pdf"
	case KindOffice:
		return "office"
	}
	return "unknown"
}

// SourcePath is an input path tagged with its classification.
type SourcePath struct {
	Kind SourceKind
	Path string
}

func (s SourcePath) String() string { return s.Path }

var imageExtensions = []string{
	"bmp", "jpeg", "jp2", "jpg", "jpx", "jxr", "pam", "pbm", "pnm", "png", "psd", "tiff",
}

var drawingExtensions = []string{
	"cdr", "odg", "otg", "pub", "std", "svg", "sxd", "vdx", "vsd", "vsdm", "vsdx",
}

var presentationExtensions = []string{
	"dps", "dpt", "fodp", "odp", "otp", "pot", "potm", "potx", "pps", "ppsx", "ppt", "pptx", "sxd",
	"sti", "xml",
}

var spreadsheetExtensions = []string{
	"123", "csv", "dif", "et", "ett", "fods", "ods", "ots", "sxc", "stc", "wb2", "wk1", "wks",
	"xlc", "xlk", "xlm", "xls", "xlsb", "xlt", "xltm", "xltx", "xlw", "xlsx", "xml",
}

var wordExtensions = []string{
	"doc", "docm", "docx", "dot", "dotm", "dotx", "fodt", "htm", "html", "hwp", "lwp", "odm",
	"odt", "oth", "ott", "psw", "rtf", "stw", "sxw", "txt", "wpd", "wpt", "wps", "xhtml", "xml",
}

var pdfExtensions = []string{"pdf"}

// officeExtensions is the single union set: some extensions (xml, sxd) appear
// in several office groups, and classification must not depend on group order.
var officeExtensions = unionSorted(drawingExtensions, presentationExtensions, spreadsheetExtensions, wordExtensions)

var imageSet = toSet(imageExtensions)
var pdfSet = toSet(pdfExtensions)
var officeSet = toSet(officeExtensions)

func toSet(exts []string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

func unionSorted(groups ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range groups {
		for _, e := range g {
			if _, ok := seen[e]; !ok {
				seen[e] = struct{}{}
				out = append(out, e)
			}
		}
	}
	sort.Strings(out)
	return out
}

// InvalidSourceError marks a path whose extension belongs to no supported set.
type InvalidSourceError struct {
	Path string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("unsupported source type: %s", e.Path)
}

func extensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ClassifyPath tags a path by its lower-cased extension.
func ClassifyPath(path string) (SourcePath, error) {
	ext := extensionOf(path)
	if _, ok := imageSet[ext]; ok {
		return SourcePath{Kind: KindImage, Path: path}, nil
	}
	if _, ok := pdfSet[ext]; ok {
		return SourcePath{Kind: KindPdf, Path: path}, nil
	}
	if _, ok := officeSet[ext]; ok {
		return SourcePath{Kind: KindOffice, Path: path}, nil
	}
	return SourcePath{}, &InvalidSourceError{Path: path}
}

// isSupported reports whether the extension belongs to any accepted set;
// office extensions only count when office conversion is on the table.
func isSupported(path string, allowOffice bool) bool {
	ext := extensionOf(path)
	if _, ok := imageSet[ext]; ok {
		return true
	}
	if _, ok := pdfSet[ext]; ok {
		return true
	}
	if allowOffice {
		if _, ok := officeSet[ext]; ok {
			return true
		}
	}
	return false
}
