package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"codelens/internal/intake"
	"codelens/internal/store"
)

const multipartOverhead = 1 << 20

type ReportHandler struct {
	intake *intake.FileIntake
	store  *store.Store
}

func NewReportHandler(in *intake.FileIntake, st *store.Store) *ReportHandler {
	return &ReportHandler{intake: in, store: st}
}

type reportInfo struct {
	Revision    string    `json:"revision"`
	ProjectName string    `json:"projectName"`
	ReplacedAt  time.Time `json:"replacedAt"`
}

func infoOf(snap store.Snapshot) reportInfo {
	info := reportInfo{Revision: snap.Revision.String(), ReplacedAt: snap.ReplacedAt}
	if snap.Report != nil {
		info.ProjectName = snap.Report.ProjectName
	}
	return info
}

// HandleReport serves GET (current document) and POST (upload) on one path.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.current(w, r)
	case http.MethodPost:
		h.upload(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *ReportHandler) current(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.store.Current()
	if !ok || snap.Report == nil {
		writeFailure(w, http.StatusNotFound, "No report loaded")
		return
	}
	raw := []byte(snap.Report.Raw)
	if len(raw) == 0 {
		b, err := json.Marshal(snap.Report)
		if err != nil {
			writeError(w, r, errors.Wrap(err, "encode report"))
			return
		}
		raw = b
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Report-Revision", snap.Revision.String())
	_, _ = w.Write(raw)
}

func (h *ReportHandler) upload(w http.ResponseWriter, r *http.Request) {
	u, cleanup, err := h.readUpload(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.intake.Accept(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, infoOf(snap))
}

// readUpload takes the "file" part of a multipart form, or the raw body
// named by the X-Filename header.
func (h *ReportHandler) readUpload(w http.ResponseWriter, r *http.Request) (intake.Upload, func(), error) {
	limit := h.intake.MaxBytes()
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(strings.ToLower(ct), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return intake.Upload{}, nil, h.intake.TooLarge(r.ContentLength)
			}
			return intake.Upload{}, nil, errors.WithHint(errors.Wrap(intake.ErrWrongType, "parse multipart form"), "Invalid file upload")
		}
		cleanup := func() { _ = r.MultipartForm.RemoveAll() }
		file, header, err := r.FormFile("file")
		if err != nil {
			return intake.Upload{}, cleanup, errors.WithHint(errors.Wrap(intake.ErrWrongType, "file part"), "No file uploaded")
		}
		return intake.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}, func() { _ = file.Close(); cleanup() }, nil
	}

	return intake.Upload{
		Name:        strings.TrimSpace(r.Header.Get("X-Filename")),
		ContentType: ct,
		Size:        r.ContentLength,
		Body:        r.Body,
	}, nil, nil
}
