package services

import (
	"errors"
	"fmt"
)

// InputError is a client input problem detected before any external call.
// Two InputErrors match under errors.Is when their codes are equal.
type InputError struct {
	Code    string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Is(target error) bool {
	t, ok := target.(*InputError)
	return ok && t.Code == e.Code
}

var (
	ErrDocumentRequired       = &InputError{Code: "document_required", Message: "No resume file uploaded"}
	ErrInvalidFileType        = &InputError{Code: "invalid_file_type", Message: "Only PDF files are allowed"}
	ErrFileTooLarge           = &InputError{Code: "file_too_large", Message: "File size exceeds the maximum allowed size"}
	ErrJobDescriptionRequired = &InputError{Code: "job_description_required", Message: "Job description is required"}
	ErrInvalidPromptKey       = &InputError{Code: "invalid_analysis_type", Message: "Invalid analysis type. Must be one of: profile, match"}
)

// ErrDocumentProcessing marks uploads that could not be turned into an image.
var ErrDocumentProcessing = errors.New("Error processing PDF")

func fileTooLarge(limit int64) error {
	return &InputError{
		Code:    ErrFileTooLarge.Code,
		Message: FileTooLargeMessage(limit),
	}
}

func FileTooLargeMessage(limit int64) string {
	return fmt.Sprintf("File size exceeds the maximum allowed size of %s", formatBytes(limit))
}

func documentProcessing(err error) error {
	return fmt.Errorf("%w: %v", ErrDocumentProcessing, err)
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
