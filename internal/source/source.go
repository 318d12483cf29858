// Package source decodes uploaded photographs and PDF scans into images and
// loads the reference card gallery from disk.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PDFDPI is the resolution the first page of a PDF upload is rendered at.
const PDFDPI = 150

var (
	ErrEmptyInput = errors.New("empty input")
	ErrNoPages    = errors.New("document has no pages")
)

var pdfMagic = []byte("%PDF")

// Source is anything that yields page images.
type Source interface {
	PageCount() int
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// FitzPDFSource renders pages of an in-memory PDF with MuPDF.
type FitzPDFSource struct {
	doc *fitz.Document
}

func NewFitzPDFSource(data []byte) (*FitzPDFSource, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// ImageSource is a single raster image (png, jpeg, gif, bmp, tiff, webp).
// EXIF orientation is applied on decode.
type ImageSource struct {
	img image.Image
}

func NewImageSource(data []byte) (*ImageSource, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return &ImageSource{img: img}, nil
}

func (s *ImageSource) PageCount() int {
	return 1
}

func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index != 0 {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	return s.img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// Open picks the source implementation from the data's magic bytes.
func Open(data []byte) (Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if bytes.HasPrefix(data, pdfMagic) {
		return NewFitzPDFSource(data)
	}
	return NewImageSource(data)
}

// Decode returns the first page of the upload as a canonical image.
func Decode(data []byte) (image.Image, error) {
	src, err := Open(data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if src.PageCount() == 0 {
		return nil, ErrNoPages
	}
	img, err := src.RenderPage(0, PDFDPI)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return Canonicalize(img)
}

// Canonicalize re-encodes the image as PNG and decodes it again, so every
// input format reaches the pipeline with the same pixel layout.
func Canonicalize(img image.Image) (image.Image, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	out, err := imaging.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return out, nil
}
