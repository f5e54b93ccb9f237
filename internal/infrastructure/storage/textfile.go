package storage

import (
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/labelpal/backend/internal/domain"
	"github.com/spf13/afero"
)

const filenameLayout = "saved_text_20060102_150405.txt"

// TextStore writes submitted text to timestamped files
type TextStore struct {
	fs  afero.Fs
	now func() time.Time
}

// NewTextStore creates a store rooted at dir on the OS filesystem
func NewTextStore(dir string) (*TextStore, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve save directory %q", dir)
	}
	if err := afero.NewOsFs().MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create save directory %q", abs)
	}
	return NewTextStoreWithFs(afero.NewBasePathFs(afero.NewOsFs(), abs)), nil
}

// NewTextStoreWithFs creates a store on an arbitrary filesystem
func NewTextStoreWithFs(fs afero.Fs) *TextStore {
	return &TextStore{fs: fs, now: time.Now}
}

// Save writes text to a new file and returns its name
func (s *TextStore) Save(text string) (string, error) {
	if text == "" {
		return "", errors.Wrap(domain.ErrInvalidRequest, "no text provided")
	}

	filename := s.now().Format(filenameLayout)
	if err := afero.WriteFile(s.fs, filename, []byte(text), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", filename)
	}

	return filename, nil
}
