package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewInsights/internal/config"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"great", "awful"}, body.Texts)

		_, _ = w.Write([]byte(`{"scores":[5,1]}`))
	}))
	defer srv.Close()

	client := NewClient(config.MLConfig{InferenceURL: srv.URL, APIKey: "secret"})
	scores, err := client.Classify(context.Background(), []string{"great", "awful"})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 1}, scores)
}

func TestClassifyRejectsBadResponses(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		status int
		body   string
	}{
		"status":    {status: http.StatusInternalServerError, body: `{}`},
		"count":     {status: http.StatusOK, body: `{"scores":[3]}`},
		"range":     {status: http.StatusOK, body: `{"scores":[3,9]}`},
		"malformed": {status: http.StatusOK, body: `not json`},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(config.MLConfig{InferenceURL: srv.URL}).Classify(context.Background(), []string{"a", "b"})
			require.Error(t, err)
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	t.Parallel()

	scores, err := NewClient(config.MLConfig{InferenceURL: "http://127.0.0.1:1"}).Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}
