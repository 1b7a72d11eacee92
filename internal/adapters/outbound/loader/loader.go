// Package loader turns local files into upload candidates.
package loader

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/policyguard/policyguard/internal/domain"
)

// maxFileSize bounds how much of a file is read into memory.
const maxFileSize = 64 << 20

// FileLoader implements domain.CandidateLoader for the local filesystem.
type FileLoader struct{}

func New() *FileLoader { return &FileLoader{} }

// Load reads path and declares its media type from the extension, falling
// back to content sniffing when the extension is unknown.
func (l *FileLoader) Load(path string) (domain.Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Candidate{}, err
	}
	if info.IsDir() {
		return domain.Candidate{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxFileSize {
		return domain.Candidate{}, fmt.Errorf("%s is larger than %d MiB", path, maxFileSize>>20)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Candidate{}, err
	}

	return domain.Candidate{
		Name:      filepath.Base(path),
		MediaType: MediaType(path, data),
		Path:      path,
		Payload:   data,
	}, nil
}

// MediaType guesses the media type of a file named path holding data.
func MediaType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	// Registries disagree on these two, so they are pinned.
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}
