package intake

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"codelens/internal/logger"
	"codelens/internal/report"
	"codelens/internal/store"
)

var repoURLPattern = regexp.MustCompile(`^https://github\.com/([\w\-.]+)/([\w\-.]+)/?$`)

// RepoRef names one GitHub repository.
type RepoRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	URL   string `json:"url"`
}

func (r RepoRef) String() string { return r.Owner + "/" + r.Repo }

// ParseRepoURL accepts only https://github.com/<owner>/<repo> with an
// optional trailing slash.
func ParseRepoURL(s string) (RepoRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RepoRef{}, ErrMissingURL
	}
	m := repoURLPattern.FindStringSubmatch(s)
	if m == nil {
		return RepoRef{}, errors.Wrapf(ErrInvalidURL, "%q", s)
	}
	return RepoRef{Owner: m[1], Repo: m[2], URL: s}, nil
}

// Analyzer produces a report document for a repository.
type Analyzer interface {
	Analyze(ctx context.Context, ref RepoRef) (json.RawMessage, error)
}

type URLIntake struct {
	analyzer Analyzer
	store    Replacer
}

func NewURLIntake(a Analyzer, st Replacer) *URLIntake {
	return &URLIntake{analyzer: a, store: st}
}

// Result is a successful URL submission.
type Result struct {
	Ref      RepoRef         `json:"ref"`
	Snapshot store.Snapshot  `json:"snapshot"`
	Data     json.RawMessage `json:"data"`
}

// Submit parses rawURL, asks the analyzer for a report and replaces the
// current report with it.
func (u *URLIntake) Submit(ctx context.Context, rawURL string) (Result, error) {
	ref, err := ParseRepoURL(rawURL)
	if err != nil {
		return Result{}, err
	}
	log := logger.FromContext(ctx).With(logger.FieldRepo, ref.String())

	data, err := u.analyzer.Analyze(ctx, ref)
	if err != nil {
		log.Infow("analysis failed", logger.FieldError, err.Error())
		return Result{}, err
	}
	r, err := report.Decode(data)
	if err != nil {
		return Result{}, errors.Mark(errors.Wrap(err, "decode analysis"), ErrInvalidUpstreamData)
	}
	if strings.TrimSpace(r.ProjectName) == "" {
		r.ProjectName = ref.String()
	}
	snap, err := u.store.Replace(ctx, r)
	if err != nil {
		return Result{}, errors.Wrap(err, "store analysis")
	}
	log.Infow("analysis stored", logger.FieldRevision, snap.Revision.String())
	return Result{Ref: ref, Snapshot: snap, Data: data}, nil
}
