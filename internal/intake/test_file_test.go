package intake

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codelens/internal/store"
)

const validDoc = `{"projectName":"demo","classes":{"A":{"name":"A","metrics":{"NOM":2}}}}`

func upload(name, contentType, body string) Upload {
	return Upload{Name: name, ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestFileIntakeAcceptsValidReport(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), "")
	fi := NewFileIntake(st, 0)

	snap, err := fi.Accept(context.Background(), upload("report.json", "application/json", validDoc))
	require.NoError(t, err)

	cur, ok := st.Current()
	require.True(t, ok)
	assert.Equal(t, snap.Revision, cur.Revision)
	assert.Equal(t, "demo", cur.Report.ProjectName)
}

func TestFileIntakeRejectsOversizedFileWithoutTouchingStore(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), "")
	fi := NewFileIntake(st, 0)

	big := bytes.Repeat([]byte(" "), 6<<20)
	_, err := fi.Accept(context.Background(), Upload{
		Name:        "big.json",
		ContentType: "application/json",
		Size:        int64(len(big)),
		Body:        bytes.NewReader(big),
	})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, "File size exceeds the limit of 5MB", UserMessage(err))
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(err))

	_, ok := st.Current()
	assert.False(t, ok)
}

func TestFileIntakeSizeEnforcedWhenUnknown(t *testing.T) {
	fi := NewFileIntake(store.New(nil, ""), 16)
	_, err := fi.Parse(Upload{Name: "x.json", Size: -1, Body: strings.NewReader(validDoc)})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, "File size exceeds the limit of 16 bytes", UserMessage(err))
}

func TestFileIntakeValidationKinds(t *testing.T) {
	cases := []struct {
		name    string
		upload  Upload
		want    error
		message string
	}{
		{
			name:    "wrong type",
			upload:  upload("report.txt", "text/plain", validDoc),
			want:    ErrWrongType,
			message: "Only JSON files are allowed",
		},
		{
			name:    "malformed",
			upload:  upload("report.json", "", `{"projectName":`),
			want:    ErrMalformedJSON,
			message: "Invalid JSON format. Please check your file.",
		},
		{
			name:    "missing project name",
			upload:  upload("report.json", "application/json", `{"classes":{}}`),
			want:    ErrMissingField,
			message: "Invalid JSON format: Missing 'projectName' field",
		},
		{
			name:    "empty project name",
			upload:  upload("report.json", "application/json", `{"projectName":"  "}`),
			want:    ErrMissingField,
			message: "Invalid JSON format: Missing 'projectName' field",
		},
		{
			name:    "array document",
			upload:  upload("report.json", "application/json", `[1,2]`),
			want:    ErrMissingField,
			message: "Invalid JSON format: Missing 'projectName' field",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.New(nil, "")
			_, err := NewFileIntake(st, 0).Accept(context.Background(), tc.upload)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.message, UserMessage(err))
			assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
			_, ok := st.Current()
			assert.False(t, ok)
		})
	}
}

func TestFileIntakeTypeCheckAcceptsEitherSignal(t *testing.T) {
	fi := NewFileIntake(store.New(nil, ""), 0)

	_, err := fi.Parse(upload("export.txt", "application/json", validDoc))
	assert.NoError(t, err)

	_, err = fi.Parse(upload("REPORT.JSON", "application/octet-stream", validDoc))
	assert.NoError(t, err)
}

func TestUnknownErrorsMapToGenericMessage(t *testing.T) {
	err := assert.AnError
	assert.Equal(t, "An unexpected error occurred. Please try again.", UserMessage(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.False(t, IsUserError(err))
	assert.Equal(t, "", UserMessage(nil))
}
