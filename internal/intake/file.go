package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"codelens/internal/logger"
	"codelens/internal/report"
	"codelens/internal/store"
)

const DefaultMaxUploadBytes int64 = 5 << 20

// Replacer is the store operation intake needs.
type Replacer interface {
	Replace(ctx context.Context, r *report.Report) (store.Snapshot, error)
}

// Upload is one submitted report file. Size may be -1 when unknown.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type FileIntake struct {
	store    Replacer
	maxBytes int64
}

func NewFileIntake(st Replacer, maxBytes int64) *FileIntake {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &FileIntake{store: st, maxBytes: maxBytes}
}

func (f *FileIntake) MaxBytes() int64 { return f.maxBytes }

// Accept validates u and, when valid, replaces the current report with it.
func (f *FileIntake) Accept(ctx context.Context, u Upload) (store.Snapshot, error) {
	r, err := f.Parse(u)
	if err != nil {
		logger.FromContext(ctx).Infow("upload rejected",
			"file", u.Name,
			logger.FieldSize, u.Size,
			logger.FieldError, err.Error(),
		)
		return store.Snapshot{}, err
	}
	snap, err := f.store.Replace(ctx, r)
	if err != nil {
		return store.Snapshot{}, errors.Wrap(err, "store uploaded report")
	}
	return snap, nil
}

// Parse runs the upload checks in order: size, type, JSON syntax and the
// projectName field.
func (f *FileIntake) Parse(u Upload) (*report.Report, error) {
	if u.Size > f.maxBytes {
		return nil, f.TooLarge(u.Size)
	}
	if !looksLikeJSON(u) {
		return nil, errors.Wrapf(ErrWrongType, "file %q with content type %q", u.Name, u.ContentType)
	}
	if u.Body == nil {
		return nil, errors.Wrap(ErrMalformedJSON, "empty body")
	}
	raw, err := io.ReadAll(io.LimitReader(u.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if int64(len(raw)) > f.maxBytes {
		return nil, f.TooLarge(int64(len(raw)))
	}
	return ParseDocument(raw)
}

// ParseDocument checks that raw is JSON with a non-empty projectName and
// decodes it.
func ParseDocument(raw []byte) (*report.Report, error) {
	if !json.Valid(raw) {
		return nil, errors.Wrap(ErrMalformedJSON, "parse upload")
	}
	r, err := report.Decode(raw)
	if errors.Is(err, report.ErrNotObject) {
		return nil, errors.Wrap(ErrMissingField, "document is not an object")
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode report"), ErrMalformedJSON)
	}
	if strings.TrimSpace(r.ProjectName) == "" {
		return nil, errors.Wrap(ErrMissingField, "projectName")
	}
	return r, nil
}

// TooLarge is the rejection for an upload of size bytes.
func (f *FileIntake) TooLarge(size int64) error {
	err := errors.Wrapf(ErrTooLarge, "%d bytes exceeds %d", size, f.maxBytes)
	return errors.WithHint(err, fmt.Sprintf("File size exceeds the limit of %s", humanLimit(f.maxBytes)))
}

func humanLimit(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

// looksLikeJSON fails only when neither the content type nor the file name
// says JSON.
func looksLikeJSON(u Upload) bool {
	if strings.Contains(strings.ToLower(u.ContentType), "json") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(u.Name)), ".json")
}
