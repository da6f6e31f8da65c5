package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TranslatorService memanggil API terjemahan untuk skrip backfill offline.
// Tidak pernah digunakan dalam request path.
type TranslatorService struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client

	// Delay tetap antara panggilan supaya tidak melebihi had kadar API.
	CallDelay time.Duration
}

// NewTranslatorService membuat instance baru TranslatorService
func NewTranslatorService(apiURL, apiKey string) *TranslatorService {
	return &TranslatorService{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		CallDelay: 100 * time.Millisecond,
	}
}

// Translate menterjemah satu teks dari bahasa sumber ke bahasa sasaran dan
// tidur sepanjang CallDelay selepas setiap panggilan.
func (t *TranslatorService) Translate(text, sourceLang, targetLang string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("translation API key is not set")
	}

	form := url.Values{}
	form.Set("q", text)
	form.Set("source", sourceLang)
	form.Set("target", targetLang)
	form.Set("format", "text")
	form.Set("key", t.apiKey)

	resp, err := t.httpClient.PostForm(t.apiURL, form)
	if err != nil {
		return "", fmt.Errorf("error calling translation API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %s", string(body))
	}
	if len(parsed.Data.Translations) == 0 {
		return "", fmt.Errorf("translation API returned no translations: %s", string(body))
	}

	time.Sleep(t.CallDelay)
	return parsed.Data.Translations[0].TranslatedText, nil
}
