package formcontroller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientQuery(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, Endpoint, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":"Grace is unmerited favor.","source_documents":["<p>Doc A</p>","<p>Doc B</p>"]}`)
	}))
	defer srv.Close()

	res, err := NewHTTPClient(srv.URL+"/").Query(context.Background(), "What is grace?")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"prompt": "What is grace?"}, gotBody)
	assert.Equal(t, &QueryResult{
		Result:          "Grace is unmerited favor.",
		SourceDocuments: []string{"<p>Doc A</p>", "<p>Doc B</p>"},
	}, res)
}

func TestHTTPClientApplicationErrorBody(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":"prompt must not be empty"}`)
		}))

		res, err := NewHTTPClient(srv.URL).Query(context.Background(), "")
		srv.Close()

		require.NoError(t, err, "status %d", status)
		assert.Equal(t, "prompt must not be empty", res.Error)
	}
}

func TestHTTPClientTransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"non-json body", http.StatusOK, "<html>oops</html>", "decode response"},
		{"null body", http.StatusOK, "null", "not a JSON object"},
		{"array body", http.StatusOK, `["x"]`, "decode response"},
		{"non-json error status", http.StatusBadGateway, "bad gateway", "unexpected status 502"},
		{"json without error on failure status", http.StatusInternalServerError, `{"result":"x"}`, "unexpected status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL).Query(context.Background(), "q")
			var terr *TransportError
			require.ErrorAs(t, err, &terr)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).Query(context.Background(), "q")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}

func TestHTTPClientOptions(t *testing.T) {
	hc := &http.Client{}
	c := NewHTTPClient("http://localhost:5000", WithEndpoint("/query"), WithHTTPClient(hc))
	assert.Equal(t, "http://localhost:5000/query", c.URL())
	assert.Same(t, hc, c.client)
}

func TestControllerOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"result":"ok","source_documents":["<p>x</p>"]}`)
	}))
	defer srv.Close()

	page := NewMemoryPage("q")
	c, err := New(page.Elements(), NewHTTPClient(srv.URL))
	require.NoError(t, err)

	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Panels(), 1)
	assert.Equal(t, "<p>x</p>", page.Panels()[0].Content)
}

func TestControllerOverHTTPNullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "null")
	}))
	defer srv.Close()

	page := NewMemoryPage("q")
	c, err := New(page.Elements(), NewHTTPClient(srv.URL))
	require.NoError(t, err)

	_, err = c.Submit(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)

	kind, text, visible := page.Message()
	assert.True(t, visible)
	assert.Equal(t, KindFailure, kind)
	assert.Equal(t, "Error: response is not a JSON object", text)
	assert.Equal(t, "q", page.Value(), "form is not reset on a transport failure")
	assert.False(t, page.Disabled())
}
