// Package tesseract shells out to a locally installed tesseract binary.
// It is the fallback OCR path when no vision service is configured.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
	"sync"
)

type Recognizer struct {
	binary   string
	language string

	detectOnce sync.Once
	detected   bool
}

func New(binary, language string) *Recognizer {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Recognizer{binary: binary, language: language}
}

// Available reports whether the tesseract binary can be executed.
// The probe runs once; absence of the binary is never fatal.
func (r *Recognizer) Available() bool {
	r.detectOnce.Do(func() {
		r.detected = exec.Command(r.binary, "--version").Run() == nil
	})
	return r.detected
}

func (r *Recognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	var input bytes.Buffer
	if err := png.Encode(&input, img); err != nil {
		return "", fmt.Errorf("encode image for ocr: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.binary, "stdin", "stdout", "-l", r.language)
	cmd.Stdin = &input

	var output bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(output.String()), nil
}
