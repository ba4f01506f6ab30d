package ingest

import (
	"path/filepath"
	"strings"

	apperrors "github.com/driftmind/driftmind/internal/errors"
)

// validateFile checks the uploaded file's extension (against the configured
// allow-list) and size (against the configured ceiling), spec.md §4.2 step
// a / §8's boundary test.
func (p *Pipeline) validateFile(fileName string, size int64) error {
	if strings.TrimSpace(fileName) == "" {
		return apperrors.NewBadRequestError("file name is required")
	}

	if len(p.blobCfg.AllowedExt) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
		allowed := false
		for _, a := range p.blobCfg.AllowedExt {
			if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperrors.NewBadRequestError("file type ." + ext + " is not allowed")
		}
	}

	maxBytes := int64(p.blobCfg.MaxFileSizeInMB) * 1024 * 1024
	if maxBytes > 0 && size > maxBytes {
		return apperrors.NewBadRequestError("file exceeds the maximum allowed size")
	}

	return nil
}
