package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"q":      r.PostFormValue("q"),
			"source": r.PostFormValue("source"),
			"target": r.PostFormValue("target"),
			"key":    r.PostFormValue("key"),
		}
		fmt.Fprint(w, `{"data":{"translations":[{"translatedText":"Bantuan Banjir"}]}}`)
	}))
	defer server.Close()

	svc := NewTranslatorService(server.URL, "test-key")
	svc.CallDelay = 0

	got, err := svc.Translate("Flood Relief", "en", "ms")
	require.NoError(t, err)
	assert.Equal(t, "Bantuan Banjir", got)

	assert.Equal(t, "Flood Relief", gotForm["q"])
	assert.Equal(t, "en", gotForm["source"])
	assert.Equal(t, "ms", gotForm["target"])
	assert.Equal(t, "test-key", gotForm["key"])
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusForbidden, `{"error":{"message":"invalid key"}}`},
		{"empty translations", http.StatusOK, `{"data":{"translations":[]}}`},
		{"malformed body", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			svc := NewTranslatorService(server.URL, "test-key")
			svc.CallDelay = 0

			_, err := svc.Translate("Hello", "en", "ms")
			assert.Error(t, err)
		})
	}
}

func TestTranslate_MissingKey(t *testing.T) {
	svc := NewTranslatorService("http://127.0.0.1:0", "")
	_, err := svc.Translate("Hello", "en", "ms")
	assert.Error(t, err)
}
