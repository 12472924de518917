// Package intake validates user-selected files and turns them into the encoded
// form sent to the drafting endpoint, and extracts text from them on the server.
package intake

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedExtension is returned for files the intake does not accept.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// AcceptedExtensions lists the extensions the intake accepts, lower-case with dot.
var AcceptedExtensions = []string{".pdf", ".docx", ".xlsx", ".pptx"}

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// File is a validated attachment ready to be sent.
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"type"`
	Data     string `json:"data"`
}

// Validate checks the extension of a file name.
func Validate(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := mimeTypes[ext]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, name)
	}
	return nil
}

// MimeType returns the MIME type for an accepted file name, or "" if not accepted.
func MimeType(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}

// FromBytes validates name and base64-encodes data.
func FromBytes(name string, data []byte) (File, error) {
	if err := Validate(name); err != nil {
		return File{}, err
	}
	return File{
		Name:     filepath.Base(name),
		MimeType: MimeType(name),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// FromPath reads and encodes a file from disk.
func FromPath(path string) (File, error) {
	if err := Validate(path); err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return FromBytes(path, data)
}

// Collect validates and encodes several paths. Every extension is checked before any
// file is read, so one bad name rejects the whole batch.
func Collect(paths []string) ([]File, error) {
	for _, p := range paths {
		if err := Validate(p); err != nil {
			return nil, err
		}
	}
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := FromPath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
