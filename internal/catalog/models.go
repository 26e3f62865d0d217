package catalog

import "time"

// Photo is a logical image identified by a database-assigned id. Hash is
// the xxh3-128 content digest, rendered as 32 lowercase hex digits, and is
// globally unique: it is the identity ingestion deduplicates on.
type Photo struct {
	ID              int64
	Hash            string
	FileName        string
	SizeOnDiskKiB   int64
	CaptureDate     time.Time
	CaptureTimezone string
	Width           int32
	Height          int32
	MimeType        string
	CameraModel     string
	LensModel       string
	ShutterCount    int32
	FocalLengthMM   int32
	ISO             int32
	ShutterSpeed    string
	ApertureFNumber float32
}

// NewPhoto carries the fields needed to insert a Photo; ID is assigned by
// the database.
type NewPhoto struct {
	Hash            string
	FileName        string
	SizeOnDiskKiB   int64
	CaptureDate     time.Time
	CaptureTimezone string
	Width           int32
	Height          int32
	MimeType        string
	CameraModel     string
	LensModel       string
	ShutterCount    int32
	FocalLengthMM   int32
	ISO             int32
	ShutterSpeed    string
	ApertureFNumber float32
}

// Album is a named container of photos and subalbums.
type Album struct {
	ID   int32
	Name string
}

// NewAlbum carries the fields needed to insert an Album. ParentID is nil
// for a root album.
type NewAlbum struct {
	Name     string
	ParentID *int32
}

// Thumbnail is one-to-one with a Photo (same id) and stores a
// THUMBNAIL_ROOT-relative path to a rendered JPEG.
type Thumbnail struct {
	PhotoID       int64
	ThumbnailPath string
}

// DefaultCaptureTimezone is the deliberate sentinel timezone used when EXIF
// extraction cannot determine one: not an error, so a file without
// metadata still ingests (spec.md §9, "Timestamp zero").
const DefaultCaptureTimezone = "+09:00"
