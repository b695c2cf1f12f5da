package validator

import "errors"

const MaxAttachmentBytes int64 = 5 * 1024 * 1024

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyFile       = errors.New("empty file")
)

var attachmentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"application/pdf": {},
}

func AllowedFileType(contentType string) bool {
	_, ok := attachmentTypes[contentType]
	return ok
}

// ValidateAttachment checks type and size; maxBytes <= 0 means MaxAttachmentBytes.
func ValidateAttachment(contentType string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxAttachmentBytes
	}
	if !AllowedFileType(contentType) {
		return ErrInvalidFileType
	}
	if size == 0 {
		return ErrEmptyFile
	}
	if size > maxBytes {
		return ErrFileTooLarge
	}
	return nil
}
