package reporter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSymbolicator(t *testing.T) {
	t.Run("formats the symbolicated stack", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/symbolicate", r.URL.Path)
			_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
			assert.NoError(t, err, "request ID should be a UUID")

			var body symbolicateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body.Stack, 1)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"codeFrame": {"content": "> 10 | throw new Error('Boom');", "fileName": "/app/App.js"},
				"stack": [
					{"methodName": "App", "file": "/app/App.js", "lineNumber": 10, "column": 5},
					{"methodName": "renderWithHooks", "file": "/app/node_modules/react/index.js", "lineNumber": 1, "column": 1, "collapse": true}
				]
			}`))
		}))
		defer server.Close()

		parsed, ok := ParseErrorString(unsymbolicatedError)
		require.True(t, ok)
		parsed.Stack = parsed.Stack[:1]

		got, err := NewHTTPSymbolicator(server.URL+"/").Symbolicate(context.Background(), "/app", "error", parsed)
		require.NoError(t, err)
		assert.Equal(t, "> 10 | throw new Error('Boom');\n\nCall Stack\n  App (App.js:10:5)", got)
	})

	t.Run("handles HTTP error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("source map missing"))
		}))
		defer server.Close()

		_, err := NewHTTPSymbolicator(server.URL).Symbolicate(context.Background(), "/app", "warn", &ParsedError{Message: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "source map missing")
	})

	t.Run("handles unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewHTTPSymbolicator(url).Symbolicate(context.Background(), "/app", "error", &ParsedError{})
		assert.Error(t, err)
	})
}
