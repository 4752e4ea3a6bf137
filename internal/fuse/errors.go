package fuse

import (
	"errors"
	"fmt"
)

// ConversionError is a failed office-to-PDF conversion: either the converter
// process could not be spawned, or it exited nonzero.
type ConversionError struct {
	Path string
	// Err is the spawn error; nil when the process ran but failed.
	Err error
	// ExitCode is meaningful only when Err is nil.
	ExitCode int
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("converting %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("converting %s: converter exited with status %d", e.Path, e.ExitCode)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ImageLoadError reports an undecodable image input.
type ImageLoadError struct {
	Path string
	// PixelType is set when the format decoded but the pixel layout is not
	// supported; otherwise the format itself was unknown.
	PixelType string
}

func (e *ImageLoadError) Error() string {
	if e.PixelType != "" {
		return fmt.Sprintf("loading image %s: unknown pixel type %s", e.Path, e.PixelType)
	}
	return fmt.Sprintf("loading image %s: unknown format", e.Path)
}

// DocumentLoadError sums up everything that can go wrong while turning one
// input into a parsed document. Exactly one cause is set.
type DocumentLoadError struct {
	Path string
	// Io covers file access problems.
	Io error
	// Conversion covers the external office converter.
	Conversion *ConversionError
	// InvalidFile covers PDF parse failures.
	InvalidFile error
	// InvalidImage covers image decode failures.
	InvalidImage *ImageLoadError
}

func (e *DocumentLoadError) Error() string {
	switch {
	case e.Io != nil:
		return fmt.Sprintf("loading %s: %v", e.Path, e.Io)
	case e.Conversion != nil:
		return e.Conversion.Error()
	case e.InvalidFile != nil:
		return fmt.Sprintf("parsing %s: %v", e.Path, e.InvalidFile)
	case e.InvalidImage != nil:
		return e.InvalidImage.Error()
	}
	return fmt.Sprintf("loading %s: unknown error", e.Path)
}

func (e *DocumentLoadError) Unwrap() error {
	switch {
	case e.Io != nil:
		return e.Io
	case e.Conversion != nil:
		return e.Conversion
	case e.InvalidFile != nil:
		return e.InvalidFile
	case e.InvalidImage != nil:
		return e.InvalidImage
	}
	return nil
}

// Fatal merge conditions; no output file is written when these surface.
var (
	ErrNoPages   = errors.New("no Pages object found in any input")
	ErrNoCatalog = errors.New("no Catalog object found in any input")
	// ErrUnsortedInput flags a pipeline precondition violation.
	ErrUnsortedInput = errors.New("input list is not sorted by index")
)
