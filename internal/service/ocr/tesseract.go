package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Tesseract shells out to the tesseract CLI.
type Tesseract struct {
	Path     string
	Language string
}

// NewTesseract returns an engine for the binary at path ("tesseract" if empty).
func NewTesseract(path, language string) *Tesseract {
	if path == "" {
		path = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Path: path, Language: language}
}

func (t *Tesseract) Name() string {
	return "tesseract"
}

// Recognize writes the image to a temp file and runs
// `tesseract <file> stdout -l <lang>`.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	tmp, err := os.CreateTemp("", "smartchat-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Path, tmp.Name(), "stdout", "-l", t.Language)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("tesseract: %w", err)
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, msg)
	}
	return stdout.String(), nil
}
