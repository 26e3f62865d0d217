// Package ingest implements the walk-hash-dedupe-copy-thumbnail-insert
// pipeline invoked by `suisai ingest`. Every per-photo step is exercised
// serially; a single file's failure is logged and skipped rather than
// aborting the run (spec.md §7's ingestion propagation policy).
package ingest

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fubuki4649/suisai-server/internal/catalog"
	"github.com/fubuki4649/suisai-server/internal/logging"
)

// exifOutput mirrors the subset of exiftool's `-j` JSON output this package
// reads. Field names match exiftool's tag names so a single struct tag
// covers the whole batch call instead of one subprocess invocation per tag
// the way original_source's shell-out trait did.
type exifOutput struct {
	DateTimeOriginal  string `json:"DateTimeOriginal"`
	OffsetTimeOriginal string `json:"OffsetTimeOriginal"`
	ImageWidth        int32  `json:"ImageWidth"`
	ImageHeight       int32  `json:"ImageHeight"`
	MIMEType          string `json:"MIMEType"`
	Model             string `json:"Model"`
	LensModel         string `json:"LensModel"`
	Lens              string `json:"Lens"`
	ImageCount        json.Number `json:"ImageCount"`
	ShutterCount      json.Number `json:"ShutterCount"`
	FocalLength       string `json:"FocalLength"`
	ISO               json.Number `json:"ISO"`
	ShutterSpeed      string `json:"ShutterSpeed"`
	Aperture          json.Number `json:"Aperture"`
}

// exifTags lists every tag read in one batch call.
var exifTags = []string{
	"-DateTimeOriginal", "-OffsetTimeOriginal",
	"-ImageWidth", "-ImageHeight", "-MIMEType",
	"-Model", "-LensModel", "-Lens",
	"-ImageCount", "-ShutterCount",
	"-FocalLength", "-ISO", "-ShutterSpeed", "-Aperture",
}

// metadata is the parsed, defaulted result of exif extraction, ready to
// populate a catalog.NewPhoto.
type metadata struct {
	CaptureDate     time.Time
	CaptureTimezone string
	Width, Height   int32
	MimeType        string
	CameraModel     string
	LensModel       string
	ShutterCount    int32
	FocalLengthMM   int32
	ISO             int32
	ShutterSpeed    string
	ApertureFNumber float32
}

// extractMetadata runs a single batched `exiftool -j` call and falls back
// to the zero-value/sentinel defaults per field on any parse failure, so a
// file with no usable EXIF still ingests (spec.md §9 "Timestamp zero").
func extractMetadata(path string) metadata {
	log := logging.For("ingest.exif")
	m := metadata{
		CaptureDate:     time.Unix(0, 0).UTC(),
		CaptureTimezone: catalog.DefaultCaptureTimezone,
		MimeType:        "application/octet-stream",
		CameraModel:     "Unknown Camera",
		LensModel:       "Unknown Lens",
		ShutterSpeed:    "Unknown",
	}

	args := append(append([]string{"-j", "-fast2"}, exifTags...), path)
	out, err := exec.Command("exiftool", args...).Output()
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("exiftool failed, using defaults")
		return m
	}

	var results []exifOutput
	if err := json.Unmarshal(out, &results); err != nil || len(results) == 0 {
		log.WithError(err).WithField("path", path).Warn("exiftool output unparseable, using defaults")
		return m
	}
	x := results[0]

	if t, err := time.Parse("2006:01:02 15:04:05", x.DateTimeOriginal); err == nil {
		m.CaptureDate = t
	}
	if isUTCOffset(x.OffsetTimeOriginal) {
		m.CaptureTimezone = x.OffsetTimeOriginal
	}

	m.Width = x.ImageWidth
	m.Height = x.ImageHeight

	if x.MIMEType != "" {
		m.MimeType = x.MIMEType
	}
	if x.Model != "" {
		m.CameraModel = x.Model
	}

	if x.LensModel != "" {
		m.LensModel = x.LensModel
	} else if x.Lens != "" {
		m.LensModel = x.Lens
	}

	for _, n := range []json.Number{x.ImageCount, x.ShutterCount} {
		if v, err := n.Int64(); err == nil && v != 0 {
			m.ShutterCount = int32(v)
			break
		}
	}

	if fl := firstField(x.FocalLength); fl != "" {
		if v, err := strconv.ParseFloat(fl, 32); err == nil {
			m.FocalLengthMM = int32(v + 0.5)
		}
	}

	if v, err := x.ISO.Int64(); err == nil {
		m.ISO = int32(v)
	}

	if x.ShutterSpeed != "" {
		m.ShutterSpeed = x.ShutterSpeed
	}

	if v, err := x.Aperture.Float64(); err == nil {
		m.ApertureFNumber = float32(v)
	}

	return m
}

func isUTCOffset(s string) bool {
	return len(s) == 6 && (strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-"))
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
