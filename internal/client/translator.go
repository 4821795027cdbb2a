package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

// TranslationResult is one translation with the language the API detected.
type TranslationResult struct {
	Text               string
	DetectedSourceLang string
}

// BilingualText is the output of the detect-then-backfill procedure: the
// original text, its machine translation, and the detected source language.
type BilingualText struct {
	Original   string
	Translated string
	SourceLang string
}

// TranslatorConfig configures the translation API client.
type TranslatorConfig struct {
	BaseURL string
	AuthKey string
	Timeout time.Duration
}

// Translator calls the external machine-translation API. Stateless; one
// network round trip per call, no retry and no caching.
type Translator struct {
	baseURL string
	authKey string
	client  *http.Client
}

// NewTranslator constructs a translator client with an explicit timeout.
func NewTranslator(cfg TranslatorConfig) *Translator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Translator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		authKey: cfg.AuthKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type translateResponse struct {
	Translations []struct {
		Text                   string `json:"text"`
		DetectedSourceLanguage string `json:"detected_source_language"`
	} `json:"translations"`
}

// Translate sends one text to the API and returns the translation plus the
// detected source language. Target is an uppercase language code ("DA", "EN").
func (t *Translator) Translate(ctx context.Context, text, target string) (*TranslationResult, error) {
	form := url.Values{}
	form.Set("auth_key", t.authKey)
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTranslation.Code, appErrors.ErrTranslation.Status, "build translation request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTranslation.Code, appErrors.ErrTranslation.Status, "call translation service")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			appErrors.ErrTranslation.Code, appErrors.ErrTranslation.Status, "translation service returned an error")
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTranslation.Code, appErrors.ErrTranslation.Status, "decode translation response")
	}
	if len(parsed.Translations) == 0 {
		return nil, appErrors.Clone(appErrors.ErrTranslation, "translation response contained no translations")
	}

	first := parsed.Translations[0]
	return &TranslationResult{
		Text:               first.Text,
		DetectedSourceLang: strings.ToLower(first.DetectedSourceLanguage),
	}, nil
}

// TranslatePair produces both language variants of a text. It first asks for
// Danish; when the API detects the input is already Danish, a second call
// translates into English instead. The detected language of the first call is
// always the source.
func (t *Translator) TranslatePair(ctx context.Context, text string) (*BilingualText, error) {
	first, err := t.Translate(ctx, text, "DA")
	if err != nil {
		return nil, err
	}

	if first.DetectedSourceLang != "da" {
		return &BilingualText{
			Original:   text,
			Translated: first.Text,
			SourceLang: first.DetectedSourceLang,
		}, nil
	}

	second, err := t.Translate(ctx, text, "EN")
	if err != nil {
		return nil, err
	}
	return &BilingualText{
		Original:   text,
		Translated: second.Text,
		SourceLang: "da",
	}, nil
}
