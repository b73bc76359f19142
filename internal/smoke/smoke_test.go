package smoke

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.URL.Path == "/__smoke_missing__" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404,"ok":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"page":"home"}`))
	}))
	defer srv.Close()

	report, err := New(srv.URL+"/", 0).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Len(t, report.Results, len(Paths))
	assert.Equal(t, http.StatusNotFound, report.Results[len(Paths)-1].Status)
}

func TestRunFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects":
			w.WriteHeader(http.StatusInternalServerError)
		case "/writing":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"page":"x"}`))
		}
	}))
	defer srv.Close()

	report, err := New(srv.URL, 0).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Passed())

	failed := map[string]string{}
	for _, r := range report.Results {
		if !r.OK() {
			failed[r.Path] = r.Error
		}
	}
	assert.Contains(t, failed["/projects"], "server error 500")
	assert.Contains(t, failed["/writing"], "content type")
	assert.Len(t, failed, 2)
}

func TestRunRejectsBadBaseURL(t *testing.T) {
	_, err := New("localhost:3000", 0).Run(context.Background())
	assert.Error(t, err)
}
