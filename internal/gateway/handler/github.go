package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"codelens/internal/intake"
)

type GithubDataHandler struct {
	intake  *intake.URLIntake
	timeout time.Duration
}

// NewGithubDataHandler bounds each analysis by timeout; zero means no bound
// beyond the request context.
func NewGithubDataHandler(in *intake.URLIntake, timeout time.Duration) *GithubDataHandler {
	return &GithubDataHandler{intake: in, timeout: timeout}
}

func (h *GithubDataHandler) HandleGithubData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var in struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		// A url that is present but not a string counts as missing.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "url" {
			writeError(w, r, errors.Mark(errors.Wrap(err, "decode github-data body"), intake.ErrMissingURL))
			return
		}
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	res, err := h.intake.Submit(ctx, in.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, res.Data)
}
