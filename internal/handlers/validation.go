package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"mapshare/internal/money"
	"mapshare/internal/services"
	"mapshare/internal/validator"

	"github.com/shopspring/decimal"
)

var (
	errInvalidAmount = errors.New("invalid amount")
	errMissingFile   = errors.New("missing file")
)

func parseAmountMinor(raw string) (int64, error) {
	amount, err := money.ParseMinor(raw)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

// decimalMinor converts a JSON amount (number or string) to signed minor units.
func decimalMinor(value decimal.Decimal) (int64, error) {
	minor, err := money.FromDecimal(value)
	if err != nil {
		return 0, errInvalidAmount
	}
	return minor, nil
}

func parseFloatParam(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseMultipart caps the body at maxBytes plus form overhead.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	if maxBytes <= 0 {
		maxBytes = validator.MaxAttachmentBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes + 1<<20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusBadRequest, "file_too_large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return false
	}
	return true
}

// formFile reads an uploaded part. It returns errMissingFile when field is absent.
func formFile(r *http.Request, field string) (*services.Attachment, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errMissingFile
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &services.Attachment{
		Name:        header.Filename,
		ContentType: partContentType(header),
		Data:        data,
	}, nil
}

func partContentType(header *multipart.FileHeader) string {
	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mediaType
}

// formList accepts repeated fields and comma separated values.
func formList(r *http.Request, field string) []string {
	var out []string
	for _, raw := range r.MultipartForm.Value[field] {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
