package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func translatorServer(t *testing.T, handler http.HandlerFunc) *Translator {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTranslator(TranslatorConfig{BaseURL: srv.URL, AuthKey: "key"})
}

func TestTranslatorTranslate(t *testing.T) {
	tr := translatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "key", r.FormValue("auth_key"))
		assert.Equal(t, "DA", r.FormValue("target_lang"))
		fmt.Fprint(w, `{"translations":[{"text":"Ny klasse","detected_source_language":"EN"}]}`)
	})

	res, err := tr.Translate(context.Background(), "New class", "da")
	require.NoError(t, err)
	assert.Equal(t, "Ny klasse", res.Text)
	assert.Equal(t, "en", res.DetectedSourceLang)
}

func TestTranslatorTranslateUpstreamError(t *testing.T) {
	tr := translatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := tr.Translate(context.Background(), "New class", "da")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestTranslatorTranslateEmptyResponse(t *testing.T) {
	tr := translatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"translations":[]}`)
	})

	_, err := tr.Translate(context.Background(), "New class", "da")
	require.Error(t, err)
}

func TestTranslatePairEnglishInput(t *testing.T) {
	var calls int
	tr := translatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "DA", r.FormValue("target_lang"))
		fmt.Fprint(w, `{"translations":[{"text":"Ny klasse starter","detected_source_language":"EN"}]}`)
	})

	pair, err := tr.TranslatePair(context.Background(), "New class starting")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "New class starting", pair.Original)
	assert.Equal(t, "Ny klasse starter", pair.Translated)
	assert.Equal(t, "en", pair.SourceLang)
}

func TestTranslatePairDanishInput(t *testing.T) {
	var targets []string
	tr := translatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		target := r.FormValue("target_lang")
		targets = append(targets, target)
		if target == "DA" {
			fmt.Fprint(w, `{"translations":[{"text":"Nyt hold starter","detected_source_language":"DA"}]}`)
			return
		}
		fmt.Fprint(w, `{"translations":[{"text":"New class starting","detected_source_language":"DA"}]}`)
	})

	pair, err := tr.TranslatePair(context.Background(), "Nyt hold starter")
	require.NoError(t, err)
	assert.Equal(t, []string{"DA", "EN"}, targets)
	assert.Equal(t, "Nyt hold starter", pair.Original)
	assert.Equal(t, "New class starting", pair.Translated)
	assert.Equal(t, "da", pair.SourceLang)
}

func TestTranslatePairSecondCallFails(t *testing.T) {
	var calls int
	tr := translatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"translations":[{"text":"Nyt hold","detected_source_language":"DA"}]}`)
			return
		}
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	_, err := tr.TranslatePair(context.Background(), "Nyt hold")
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
