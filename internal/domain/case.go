package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	CaseStatusPending     CaseStatus = "pending"
	CaseStatusCompleted   CaseStatus = "completed"
	CaseStatusHITLPending CaseStatus = "hitl_pending"
)

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
	MediaUnknown  MediaKind = "unknown"
)

var extensionKinds = map[string]MediaKind{
	"jpg": MediaImage, "jpeg": MediaImage, "png": MediaImage,
	"bmp": MediaImage, "gif": MediaImage, "webp": MediaImage,
	"mp4": MediaVideo, "avi": MediaVideo, "mov": MediaVideo,
	"mkv": MediaVideo, "webm": MediaVideo,
	"mp3": MediaAudio, "wav": MediaAudio, "ogg": MediaAudio,
	"flac": MediaAudio, "m4a": MediaAudio,
	"pdf": MediaDocument, "doc": MediaDocument, "docx": MediaDocument,
	"txt": MediaDocument, "tif": MediaDocument, "tiff": MediaDocument,
}

// DetectMediaKind classifies a file by extension.
func DetectMediaKind(filename string) MediaKind {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return MediaUnknown
	}
	ext := strings.ToLower(filename[idx+1:])
	if kind, ok := extensionKinds[ext]; ok {
		return kind
	}
	return MediaUnknown
}

// Case is one verification request. FileHash is the SHA-256 of the uploaded
// bytes, taken before any processing for chain of custody.
type Case struct {
	ID           uuid.UUID  `json:"id"`
	ClientID     string     `json:"client_id"`
	Status       CaseStatus `json:"status"`
	MediaKind    MediaKind  `json:"media_kind"`
	FileURL      string     `json:"file_url"`
	FileHash     string     `json:"file_hash"`
	Confidence   *float64   `json:"confidence,omitempty"`
	Verdict      *Verdict   `json:"verdict,omitempty"`
	HITLRequired bool       `json:"hitl_required"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
