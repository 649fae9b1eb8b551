// Package timeline builds the version-history view models returned by the
// version list endpoint: display labels, file classification and preview
// hints for each stored design version.
package timeline

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/axelgear/design-integration/internal/design/entity"
)

// FileKind classifies a version attachment by extension.
type FileKind string

const (
	KindImage      FileKind = "image"
	KindPDF        FileKind = "pdf"
	KindDocument   FileKind = "document"
	KindDesignFile FileKind = "design-file"
	KindOther      FileKind = "other"
	KindNone       FileKind = ""
)

var extKinds = map[string]FileKind{
	"png":  KindImage,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"webp": KindImage,
	"gif":  KindImage,
	"bmp":  KindImage,
	"pdf":  KindPDF,
	"doc":  KindDocument,
	"docx": KindDocument,
	"odt":  KindDocument,
	"ai":   KindDesignFile,
	"psd":  KindDesignFile,
	"eps":  KindDesignFile,
	"svg":  KindDesignFile,
	"dwg":  KindDesignFile,
	"dxf":  KindDesignFile,
}

// markerColors cycle across the timeline dots.
var markerColors = []string{"primary", "success", "warning", "info"}

// Classify maps a file URL to its kind and badge text. Unknown extensions get
// KindOther with the uppercased extension as badge; an empty URL gets
// KindNone and no badge.
func Classify(fileURL string) (FileKind, string) {
	if fileURL == "" {
		return KindNone, ""
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileURL)), ".")
	if ext == "" {
		return KindOther, "FILE"
	}
	if kind, ok := extKinds[ext]; ok {
		return kind, strings.ToUpper(ext)
	}
	return KindOther, strings.ToUpper(ext)
}

// Card is one rendered timeline entry.
type Card struct {
	ID           string     `json:"id"`
	VersionTag   string     `json:"version_tag"`
	DisplayLabel string     `json:"display_label"`
	Index        int        `json:"index"`
	Description  string     `json:"description,omitempty"`
	FileURL      string     `json:"file_url,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
	FileKind     FileKind   `json:"file_kind"`
	Badge        string     `json:"badge,omitempty"`
	Preview      bool       `json:"preview"`
	MarkerColor  string     `json:"marker_color"`
	PostingDate  *time.Time `json:"posting_date,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
}

// Build renders cards for an oldest-first version list. Display labels are
// positional (index 0 renders as V1) regardless of the stored tag, so the
// timeline stays dense after deletions.
func Build(versions []entity.DesignVersion) []Card {
	cards := make([]Card, 0, len(versions))
	for i, v := range versions {
		kind, badge := Classify(v.FileURL)
		cards = append(cards, Card{
			ID:           v.ID,
			VersionTag:   v.VersionTag,
			DisplayLabel: "V" + strconv.Itoa(i+1),
			Index:        i,
			Description:  v.Description,
			FileURL:      v.FileURL,
			FileName:     v.FileName,
			FileKind:     kind,
			Badge:        badge,
			Preview:      kind == KindImage || kind == KindPDF,
			MarkerColor:  markerColors[i%len(markerColors)],
			PostingDate:  v.PostingDate,
			CreatedBy:    v.CreatedBy,
		})
	}
	return cards
}
