package params

import (
	"fmt"
	"os"
	"strings"

	"github.com/Pedrokostam/PDFuse/internal/sizing"
)

// BookmarkMode selects how per-input bookmarks are titled in the output.
type BookmarkMode int

const (
	// BookmarksNone adds no bookmarks.
	BookmarksNone BookmarkMode = iota
	// BookmarksIndex titles each bookmark with the input index.
	BookmarksIndex
	// BookmarksIndexName titles with "<index> - <file name>".
	BookmarksIndexName
)

func (b BookmarkMode) String() string {
	switch b {
	case BookmarksNone:
		return "none"
	case BookmarksIndex:
		return "index"
	case BookmarksIndexName:
		return "index-name"
	}
	return "unknown"
}

// ParseBookmarkMode accepts the CLI spellings of the mode.
func ParseBookmarkMode(text string) (BookmarkMode, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "none":
		return BookmarksNone, nil
	case "index":
		return BookmarksIndex, nil
	case "index-name", "indexname":
		return BookmarksIndexName, nil
	}
	return BookmarksNone, fmt.Errorf("invalid bookmark mode: %q", text)
}

func (b BookmarkMode) MarshalYAML() (interface{}, error) { return b.String(), nil }

func (b *BookmarkMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseBookmarkMode(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Parameters carries everything the pipeline consumes. Loaded from flags
// and/or a YAML config file; immutable once the pipeline starts.
type Parameters struct {
	ImagePageFallbackSize      sizing.PageSize   `yaml:"image_page_fallback_size"`
	ImageDpi                   int               `yaml:"image_dpi"`
	ImageQuality               int               `yaml:"image_quality"`
	ImageLosslessCompression   bool              `yaml:"image_lossless_compression"`
	Margin                     sizing.CustomSize `yaml:"margin"`
	ForceImagePageFallbackSize bool              `yaml:"force_image_page_fallback_size"`
	RecursionLimit             int               `yaml:"recursion_limit"`
	AlphabeticFileSorting      bool              `yaml:"alphabetic_file_sorting"`
	LibreOfficePath            string            `yaml:"libreoffice_path,omitempty"`
	OutputFile                 string            `yaml:"output_file"`
	Bookmarks                  BookmarkMode      `yaml:"bookmarks"`
	Language                   string            `yaml:"language,omitempty"`
	WhatIf                     bool              `yaml:"-"`
	Validate                   bool              `yaml:"-"`
	Quiet                      bool              `yaml:"-"`
}

// DefaultParameters mirrors the defaults of the original command line.
func DefaultParameters() Parameters {
	return Parameters{
		ImagePageFallbackSize: sizing.DefaultPageSize(),
		ImageDpi:              300,
		ImageQuality:          95,
		Margin:                sizing.CustomSize{},
		RecursionLimit:        1,
		OutputFile:            "merged.pdf",
		Bookmarks:             BookmarksIndex,
	}
}

// HasConverter reports whether an office converter path is configured. It
// does not check the file system; ResolveConverter is what verifies that a
// candidate exists and is executable.
func (p Parameters) HasConverter() bool {
	return p.LibreOfficePath != ""
}

// ResolveConverter picks the first existing executable from the candidate
// list. An empty result means office inputs will be skipped.
func ResolveConverter(candidates []string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 != 0 {
			return c
		}
	}
	return ""
}
