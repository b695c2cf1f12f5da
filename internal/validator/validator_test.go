package validator

import (
	"errors"
	"testing"
)

func TestValidateAttachment(t *testing.T) {
	cases := []struct {
		contentType string
		size        int64
		want        error
	}{
		{"image/jpeg", 10, nil},
		{"image/png", MaxAttachmentBytes, nil},
		{"image/gif", 1, nil},
		{"application/pdf", 1, nil},
		{"image/webp", 10, ErrInvalidFileType},
		{"text/plain", 10, ErrInvalidFileType},
		{"image/png", MaxAttachmentBytes + 1, ErrFileTooLarge},
		{"image/png", 0, ErrEmptyFile},
	}
	for _, tc := range cases {
		if err := ValidateAttachment(tc.contentType, tc.size, 0); !errors.Is(err, tc.want) {
			t.Fatalf("%s/%d: expected %v, got %v", tc.contentType, tc.size, tc.want, err)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	if err := ValidateCoordinates(45, -122); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateCoordinates(91, 0); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
	if err := ValidateCoordinates(0, -181); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestValidateEmailAndPassword(t *testing.T) {
	if err := ValidateEmail("a@b.co"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateEmail("nope"); err != ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if err := ValidatePassword("short"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestStructReportsJSONFieldName(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required"`
	}
	err := Struct(payload{})
	if err == nil || err.Error() != "title: required" {
		t.Fatalf("unexpected error: %v", err)
	}
}
