package domain

import (
	"fmt"
	"sort"
	"strings"
)

// FileCategory is the handling category derived from a filename extension.
type FileCategory string

const (
	CategoryPDF   FileCategory = "pdf"
	CategoryDocx  FileCategory = "docx"
	CategoryImage FileCategory = "image"
)

// DocumentKind tells the recognition layer what kind of text to expect,
// which selects the transcription prompt.
type DocumentKind string

const (
	KindResume         DocumentKind = "resume"
	KindJobDescription DocumentKind = "job_description"
)

// MaxUploadSize is the hard byte ceiling for uploaded documents.
const MaxUploadSize = 2 * 1024 * 1024

var allowedExtensions = map[string]FileCategory{
	".pdf":  CategoryPDF,
	".doc":  CategoryDocx, // legacy Word files go through the same parser
	".docx": CategoryDocx,
	".png":  CategoryImage,
	".jpg":  CategoryImage,
	".jpeg": CategoryImage,
}

// UploadedDocument is a request-scoped upload, consumed exactly once by
// extraction and discarded after.
type UploadedDocument struct {
	Content  []byte
	Filename string
	Size     int64
	Kind     DocumentKind
}

// Classify maps a filename to its handling category. Unknown or absent
// extensions are an ErrUnsupportedType failure, not a category.
func Classify(filename string) (FileCategory, error) {
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = strings.ToLower(filename[idx:])
	}
	category, ok := allowedExtensions[ext]
	if !ok {
		return "", Failf(ErrUnsupportedType,
			"file type %q is not supported. Please upload one of: %s", ext, allowedExtensionList())
	}
	return category, nil
}

// CheckSize enforces the upload byte ceiling and rejects empty files.
func CheckSize(declaredSize int64) error {
	if declaredSize > MaxUploadSize {
		return Failf(ErrTooLarge,
			"file is too large. Maximum allowed size is %dMB", MaxUploadSize/(1024*1024))
	}
	if declaredSize == 0 {
		return Failf(ErrEmptyFile, "the uploaded file is empty")
	}
	return nil
}

func allowedExtensionList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// ExtractedText is the sanitized output of the extraction facade.
type ExtractedText struct {
	Text     string `json:"extracted_text"`
	Filename string `json:"filename"`
	Warning  string `json:"warning,omitempty"`
}

func (e ExtractedText) CharCount() int { return len(e.Text) }

// Identity is the verified caller returned by the identity check.
type Identity struct {
	UserID      string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
}

func (i Identity) String() string {
	return fmt.Sprintf("%s <%s>", i.UserID, i.Email)
}
