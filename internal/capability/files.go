// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capability

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize bounds files read for upload (images, avatars).
const MaxFileSize = 10 * 1024 * 1024

// ErrFileTooLarge is returned for files over the reader's limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrNotImage is returned by ReadImage for non-image content.
var ErrNotImage = errors.New("file is not an image")

// File is the content of a local file.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Base64 returns the content as standard base64.
func (f File) Base64() string {
	return base64.StdEncoding.EncodeToString(f.Data)
}

// DataURL returns a data: URL for the content.
func (f File) DataURL() string {
	return "data:" + f.MIME + ";base64," + f.Base64()
}

// IsImage reports whether the sniffed type is an image.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MIME, "image/")
}

// FileReader loads local files.
type FileReader interface {
	Capability
	Read(path string) (File, error)
}

// OSFileReader reads from the local filesystem.
type OSFileReader struct {
	// Limit overrides MaxFileSize when positive.
	Limit int64
}

// Supported implements Capability.
func (OSFileReader) Supported() bool { return true }

// Read implements FileReader.
func (r OSFileReader) Read(path string) (File, error) {
	limit := r.Limit
	if limit <= 0 {
		limit = MaxFileSize
	}

	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > limit {
		return File{}, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrFileTooLarge, path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return File{}, fmt.Errorf("%w: %s", ErrFileTooLarge, path)
	}

	return File{
		Name: filepath.Base(path),
		MIME: http.DetectContentType(data),
		Data: data,
	}, nil
}

// ReadImage reads path through r and rejects non-images.
func ReadImage(r FileReader, path string) (File, error) {
	if !r.Supported() {
		return File{}, ErrUnsupported
	}
	f, err := r.Read(path)
	if err != nil {
		return File{}, err
	}
	if !f.IsImage() {
		return File{}, fmt.Errorf("%w: %s (%s)", ErrNotImage, f.Name, f.MIME)
	}
	return f, nil
}
