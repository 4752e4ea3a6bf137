package fuse

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	// formats the loader understands; x/image widens the stdlib set
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Pedrokostam/PDFuse/internal/pdf"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

// ColorType is the pixel layout of a decoded bitmap.
type ColorType int

const (
	ColorUnknown ColorType = iota
	L8
	LA8
	RGB8
	RGBA8
	L16
	LA16
	RGB16
	RGBA16
	RGBF32
	RGBAF32
)

func (c ColorType) String() string {
	switch c {
	case L8:
		return "L8"
	case LA8:
		return "LA8"
	case RGB8:
		return "RGB8"
	case RGBA8:
		return "RGBA8"
	case L16:
		return "L16"
	case LA16:
		return "LA16"
	case RGB16:
		return "RGB16"
	case RGBA16:
		return "RGBA16"
	case RGBF32:
		return "RGBF32"
	case RGBAF32:
		return "RGBAF32"
	}
	return "unknown"
}

// classifyColor maps a decoded bitmap onto the supported pixel layouts.
func classifyColor(img image.Image) ColorType {
	switch img.(type) {
	case *image.Gray:
		return L8
	case *image.Gray16:
		return L16
	case *image.NRGBA, *image.RGBA:
		return RGBA8
	case *image.NRGBA64, *image.RGBA64:
		return RGBA16
	case *image.YCbCr, *image.CMYK:
		return RGB8
	case *image.Paletted:
		return RGBA8
	}
	return ColorUnknown
}

// LoadedImage is a decoded bitmap plus its source path.
type LoadedImage struct {
	Image      image.Image
	Color      ColorType
	SourcePath string
}

func (li *LoadedImage) Width() int  { return li.Image.Bounds().Dx() }
func (li *LoadedImage) Height() int { return li.Image.Bounds().Dy() }

func (li *LoadedImage) String() string {
	return fmt.Sprintf("Image data: %dx%d, from %q", li.Width(), li.Height(), li.SourcePath)
}

// LoadImage decodes an image file with format guessing.
func LoadImage(path string) (*LoadedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DocumentLoadError{Path: path, Io: err}
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DocumentLoadError{Path: path, InvalidImage: &ImageLoadError{Path: path}}
	}
	color := classifyColor(img)
	if color == ColorUnknown {
		return nil, &DocumentLoadError{Path: path, InvalidImage: &ImageLoadError{
			Path: path, PixelType: fmt.Sprintf("%T", img),
		}}
	}
	return &LoadedImage{Image: img, Color: color, SourcePath: path}, nil
}

// LoadedDocument is a parsed PDF object graph plus its source path.
type LoadedDocument struct {
	Doc        *pdf.Document
	SourcePath string
}

func (ld *LoadedDocument) PageCount() int {
	return len(ld.Doc.PageIDs())
}

func (ld *LoadedDocument) String() string {
	return fmt.Sprintf("Document: %d pages from %q", ld.PageCount(), ld.SourcePath)
}

// PageSize scans pages for the first non-degenerate MediaBox and returns its
// extent. ok is false when every page is missing one or degenerate.
func (ld *LoadedDocument) PageSize() (sizing.CustomSize, bool) {
	for _, pageID := range ld.Doc.PageIDs() {
		obj, err := ld.Doc.GetObject(pageID)
		if err != nil {
			continue
		}
		dict, ok := pdf.DictOf(obj)
		if !ok {
			continue
		}
		mediaBox, ok := dict.GetArray("MediaBox")
		if !ok || len(mediaBox) < 4 {
			log.WithField("document", ld.String()).Debug("page without usable MediaBox")
			continue
		}
		coords := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, _ := pdf.AsFloat(ld.Doc.Resolve(mediaBox[i]))
			coords[i] = v
		}
		horizontal := sizing.FromPoints(coords[2] - coords[0])
		vertical := sizing.FromPoints(coords[3] - coords[1])
		if !horizontal.IsPositive() || !vertical.IsPositive() {
			log.WithField("document", ld.String()).Debug("degenerate MediaBox")
			continue
		}
		return sizing.CustomSize{Horizontal: horizontal, Vertical: vertical}, true
	}
	log.WithField("document", ld.String()).Debug("no page reports a valid MediaBox")
	return sizing.CustomSize{}, false
}

// LoadDocument parses a PDF file into its object graph.
func LoadDocument(path string) (*LoadedDocument, error) {
	doc, err := pdf.Load(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, &DocumentLoadError{Path: path, Io: err}
		}
		return nil, &DocumentLoadError{Path: path, InvalidFile: err}
	}
	return &LoadedDocument{Doc: doc, SourcePath: path}, nil
}

// Data is the unit flowing through the pipeline after loading: either a
// decoded image or a parsed document. Exactly one field is set.
type Data struct {
	Image    *LoadedImage
	Document *LoadedDocument
}

func (d Data) String() string {
	if d.Image != nil {
		return d.Image.String()
	}
	if d.Document != nil {
		return d.Document.String()
	}
	return "empty data"
}

// Result carries either loaded data or the per-item error; peers are never
// affected by one item failing.
type Result struct {
	Data Data
	Err  error
}

// IndexedResult is what the pipeline stages exchange.
type IndexedResult = utils.Indexed[Result]

func okImage(index int, img *LoadedImage) IndexedResult {
	return utils.NewIndexed(index, Result{Data: Data{Image: img}})
}

func okDocument(index int, doc *LoadedDocument) IndexedResult {
	return utils.NewIndexed(index, Result{Data: Data{Document: doc}})
}

func errResult(index int, err error) IndexedResult {
	return utils.NewIndexed(index, Result{Err: err})
}

// baseName is the file name shown in index-name bookmarks.
func baseName(path string) string {
	return filepath.Base(path)
}
