package fuse

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	log "github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"github.com/Pedrokostam/PDFuse/internal/pdf"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
)

// Imager lays decoded images out onto PDF pages: one page per image, sized
// exactly to the configured page, with the bitmap scaled to the drawable
// area at the configured DPI.
type Imager struct {
	title    string
	pageSize sizing.CustomSize
	dpi      float64
	margin   sizing.CustomSize
	quality  int
	lossless bool

	doc     *pdf.Document
	pagesID pdf.ObjectID
	kids    []pdf.ObjectID
}

// NewImager prepares an empty image document. quality is clamped to [1,100].
func NewImager(title string, pageSize sizing.CustomSize, dpi int, margin sizing.CustomSize, quality int, lossless bool) *Imager {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	doc := pdf.NewDocument("1.5")
	info := pdf.NewDictionary()
	info.Set("Title", pdf.String{Data: []byte(title)})
	info.Set("Producer", pdf.String{Data: []byte("pdfuse")})
	infoID := doc.AddObject(info)
	doc.Trailer.Set("Info", pdf.Reference(infoID))
	im := &Imager{
		title:    title,
		pageSize: pageSize,
		dpi:      float64(dpi),
		margin:   margin,
		quality:  quality,
		lossless: lossless,
		doc:      doc,
	}
	// the page tree root is allocated up front so pages can point at it
	pages := pdf.NewDictionary()
	pages.Set("Type", pdf.Name("Pages"))
	im.pagesID = doc.AddObject(pages)
	return im
}

// SetPageSize changes the page size for subsequently added images. The
// sequential documentize mode resizes between images of one run.
func (im *Imager) SetPageSize(size sizing.CustomSize) {
	im.pageSize = size
}

// PageCount reports the pages added so far.
func (im *Imager) PageCount() int { return len(im.kids) }

// AddImage renders one image as a new page.
func (im *Imager) AddImage(li *LoadedImage) error {
	drawable := im.pageSize.Sub(im.margin)
	adjusted := adjustToDpi(li.Image, drawable, im.dpi)

	imageSize := sizing.CustomFromInches(
		float64(adjusted.Bounds().Dx())/im.dpi,
		float64(adjusted.Bounds().Dy())/im.dpi,
	)
	scale := drawable.Fit(imageSize)
	translation := imageTranslation(im.pageSize, imageSize.Mul(scale), im.margin)

	xobjectID, err := im.addImageXObject(adjusted, li)
	if err != nil {
		return err
	}

	// placed extent in points: pixels at dpi, scaled uniformly
	widthPt := float64(adjusted.Bounds().Dx()) / im.dpi * 72.0 * scale
	heightPt := float64(adjusted.Bounds().Dy()) / im.dpi * 72.0 * scale
	content := fmt.Sprintf("q\n%s 0 0 %s %s %s cm\n/Im0 Do\nQ",
		fmtNum(widthPt), fmtNum(heightPt),
		fmtNum(translation.Horizontal.Points()), fmtNum(translation.Vertical.Points()))
	contentID := im.doc.AddObject(&pdf.Stream{Dict: pdf.NewDictionary(), Data: []byte(content)})

	xobjects := pdf.NewDictionary()
	xobjects.Set("Im0", pdf.Reference(xobjectID))
	resources := pdf.NewDictionary()
	resources.Set("XObject", xobjects)

	page := pdf.NewDictionary()
	page.Set("Type", pdf.Name("Page"))
	page.Set("Parent", pdf.Reference(im.pagesID))
	page.Set("MediaBox", pdf.Array{
		pdf.Integer(0), pdf.Integer(0),
		pdf.Real(im.pageSize.Horizontal.Points()), pdf.Real(im.pageSize.Vertical.Points()),
	})
	page.Set("Resources", resources)
	page.Set("Contents", pdf.Reference(contentID))
	pageID := im.doc.AddObject(page)
	im.kids = append(im.kids, pageID)
	return nil
}

// Finalize wires the page tree and catalog and hands the document over. The
// imager must not be used afterwards.
func (im *Imager) Finalize() *pdf.Document {
	kids := make(pdf.Array, len(im.kids))
	for i, id := range im.kids {
		kids[i] = pdf.Reference(id)
	}
	pagesObj, _ := im.doc.GetObject(im.pagesID)
	pages, _ := pdf.DictOf(pagesObj)
	pages.Set("Kids", kids)
	pages.Set("Count", pdf.Integer(len(im.kids)))

	catalog := pdf.NewDictionary()
	catalog.Set("Type", pdf.Name("Catalog"))
	catalog.Set("Pages", pdf.Reference(im.pagesID))
	catalogID := im.doc.AddObject(catalog)
	im.doc.Trailer.Set("Root", pdf.Reference(catalogID))
	return im.doc
}

// adjustToDpi downsizes a bitmap that exceeds the drawable area's pixel
// budget at the given DPI. Images that already fit are never upscaled.
func adjustToDpi(img image.Image, drawArea sizing.CustomSize, dpi float64) image.Image {
	maxW := int(drawArea.Horizontal.Inches() * dpi)
	maxH := int(drawArea.Vertical.Inches() * dpi)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if maxW <= 0 || maxH <= 0 {
		return img
	}
	if w <= maxW && h <= maxH {
		log.WithFields(log.Fields{"width": w, "height": h}).
			Debug("image within pixel budget, keeping original resolution")
		return img
	}
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	targetW := int(math.Round(float64(w) * ratio))
	targetH := int(math.Round(float64(h) * ratio))
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	log.WithFields(log.Fields{
		"width": w, "height": h, "target_width": targetW, "target_height": targetH,
	}).Debug("resizing image to pixel budget")
	dst := image.NewNRGBA64(image.Rect(0, 0, targetW, targetH))
	// Catmull-Rom is the highest-quality resampler x/image/draw offers
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// imageTranslation centers the scaled image inside the drawable area,
// measured from the bottom-left page origin.
func imageTranslation(pageSize, scaledImage, margin sizing.CustomSize) sizing.CustomSize {
	margined := pageSize.Sub(margin)
	difference := margined.Sub(scaledImage)
	return difference.Div(2).Add(margin.Div(2))
}

// samples is one extracted color channel set ready for embedding.
type samples struct {
	colorSpace pdf.Name
	bits       int
	data       []byte
	alpha      []byte // same bit depth, DeviceGray; nil when opaque
}

// addImageXObject encodes the bitmap and registers the XObject. The base
// image uses DCT at the configured quality unless lossless is requested;
// grayscale images, 16-bit data and alpha masks always use flate.
func (im *Imager) addImageXObject(img image.Image, li *LoadedImage) (pdf.ObjectID, error) {
	s, err := extractSamples(img, li)
	if err != nil {
		return pdf.ObjectID{}, err
	}

	dict := pdf.NewDictionary()
	dict.Set("Type", pdf.Name("XObject"))
	dict.Set("Subtype", pdf.Name("Image"))
	dict.Set("Width", pdf.Integer(img.Bounds().Dx()))
	dict.Set("Height", pdf.Integer(img.Bounds().Dy()))
	dict.Set("ColorSpace", s.colorSpace)
	dict.Set("BitsPerComponent", pdf.Integer(s.bits))
	dict.Set("Interpolate", pdf.Boolean(true))

	var encoded []byte
	useDct := !im.lossless && s.colorSpace == "DeviceRGB" && s.bits == 8
	if useDct {
		encoded, err = dctEncode(img.Bounds().Dx(), img.Bounds().Dy(), s.data, im.quality)
		if err != nil {
			return pdf.ObjectID{}, err
		}
		dict.Set("Filter", pdf.Name("DCTDecode"))
	} else {
		encoded = flateEncode(s.data)
		dict.Set("Filter", pdf.Name("FlateDecode"))
	}

	if s.alpha != nil {
		maskDict := pdf.NewDictionary()
		maskDict.Set("Type", pdf.Name("XObject"))
		maskDict.Set("Subtype", pdf.Name("Image"))
		maskDict.Set("Width", pdf.Integer(img.Bounds().Dx()))
		maskDict.Set("Height", pdf.Integer(img.Bounds().Dy()))
		maskDict.Set("ColorSpace", pdf.Name("DeviceGray"))
		maskDict.Set("BitsPerComponent", pdf.Integer(s.bits))
		maskDict.Set("Filter", pdf.Name("FlateDecode"))
		maskID := im.doc.AddObject(&pdf.Stream{Dict: maskDict, Data: flateEncode(s.alpha)})
		dict.Set("SMask", pdf.Reference(maskID))
	}

	return im.doc.AddObject(&pdf.Stream{Dict: dict, Data: encoded}), nil
}

// extractSamples pulls raw channel data out of the bitmap according to its
// color type. Unsupported layouts surface as the image loader's pixel-type
// error.
func extractSamples(img image.Image, li *LoadedImage) (samples, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	// a resized bitmap is always NRGBA64 regardless of the source type
	color := li.Color
	if _, resized := img.(*image.NRGBA64); resized && img != li.Image {
		color = RGBA16
	}
	switch color {
	case L8:
		gray, ok := img.(*image.Gray)
		if !ok {
			return grayFallback(img, w, h), nil
		}
		return samples{colorSpace: "DeviceGray", bits: 8, data: tightGray(gray, w, h)}, nil
	case L16:
		gray, ok := img.(*image.Gray16)
		if !ok {
			return grayFallback(img, w, h), nil
		}
		return samples{colorSpace: "DeviceGray", bits: 16, data: tightGray16(gray, w, h)}, nil
	case RGB8:
		return samples{colorSpace: "DeviceRGB", bits: 8, data: rgb8Samples(img, w, h)}, nil
	case RGBA8:
		rgb, alpha, opaque := rgba8Samples(img, w, h)
		s := samples{colorSpace: "DeviceRGB", bits: 8, data: rgb}
		if !opaque {
			s.alpha = alpha
		}
		return s, nil
	case RGB16, RGBA16:
		rgb, alpha, opaque := rgba16Samples(img, w, h)
		s := samples{colorSpace: "DeviceRGB", bits: 16, data: rgb}
		if !opaque {
			s.alpha = alpha
		}
		return s, nil
	}
	return samples{}, &DocumentLoadError{Path: li.SourcePath, InvalidImage: &ImageLoadError{
		Path: li.SourcePath, PixelType: color.String(),
	}}
}

func grayFallback(img image.Image, w, h int) samples {
	data := make([]byte, w*h)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
			data[i] = byte(((r + g + b) / 3) >> 8)
			i++
		}
	}
	return samples{colorSpace: "DeviceGray", bits: 8, data: data}
}

func tightGray(img *image.Gray, w, h int) []byte {
	data := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(data[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
	}
	return data
}

func tightGray16(img *image.Gray16, w, h int) []byte {
	data := make([]byte, w*h*2)
	for y := 0; y < h; y++ {
		copy(data[y*w*2:(y+1)*w*2], img.Pix[y*img.Stride:y*img.Stride+w*2])
	}
	return data
}

func rgb8Samples(img image.Image, w, h int) []byte {
	data := make([]byte, w*h*3)
	i := 0
	min := img.Bounds().Min
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(min.X+x, min.Y+y).RGBA()
			data[i] = byte(r >> 8)
			data[i+1] = byte(g >> 8)
			data[i+2] = byte(b >> 8)
			i += 3
		}
	}
	return data
}

func rgba8Samples(img image.Image, w, h int) (rgb, alpha []byte, opaque bool) {
	rgb = make([]byte, w*h*3)
	alpha = make([]byte, w*h)
	opaque = true
	i, j := 0, 0
	min := img.Bounds().Min
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(min.X+x, min.Y+y)
			r, g, b, a := unmultiplied(c)
			rgb[i] = byte(r >> 8)
			rgb[i+1] = byte(g >> 8)
			rgb[i+2] = byte(b >> 8)
			alpha[j] = byte(a >> 8)
			if alpha[j] != 0xFF {
				opaque = false
			}
			i += 3
			j++
		}
	}
	return rgb, alpha, opaque
}

func rgba16Samples(img image.Image, w, h int) (rgb, alpha []byte, opaque bool) {
	rgb = make([]byte, w*h*6)
	alpha = make([]byte, w*h*2)
	opaque = true
	i, j := 0, 0
	min := img.Bounds().Min
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(min.X+x, min.Y+y)
			r, g, b, a := unmultiplied(c)
			rgb[i] = byte(r >> 8)
			rgb[i+1] = byte(r)
			rgb[i+2] = byte(g >> 8)
			rgb[i+3] = byte(g)
			rgb[i+4] = byte(b >> 8)
			rgb[i+5] = byte(b)
			alpha[j] = byte(a >> 8)
			alpha[j+1] = byte(a)
			if a != 0xFFFF {
				opaque = false
			}
			i += 6
			j += 2
		}
	}
	return rgb, alpha, opaque
}

// unmultiplied returns non-premultiplied channels so the SMask composites
// correctly.
func unmultiplied(c interface{ RGBA() (uint32, uint32, uint32, uint32) }) (uint32, uint32, uint32, uint32) {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 0, 0, 0, 0
	}
	if a != 0xFFFF {
		r = r * 0xFFFF / a
		g = g * 0xFFFF / a
		b = b * 0xFFFF / a
	}
	return r, g, b, a
}

func flateEncode(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

// dctEncode runs the RGB samples through JPEG at quality/100.
func dctEncode(w, h int, rgb []byte, quality int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := img.PixOffset(x, y)
			img.Pix[o] = rgb[i]
			img.Pix[o+1] = rgb[i+1]
			img.Pix[o+2] = rgb[i+2]
			img.Pix[o+3] = 0xFF
			i += 3
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fmtNum prints a content-stream number with enough precision for layout.
func fmtNum(f float64) string {
	return fmt.Sprintf("%.4f", f)
}
