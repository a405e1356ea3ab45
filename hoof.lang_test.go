package hoof

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLangFiles = map[string]string{
	"lang/en/home.yaml": "title: \"Welcome :name\"\nnav:\n  about: About\n  count: 3\nlist: [a, b]\n",
	"lang/de/home.yaml": "title: \"Willkommen :name\"\n",
	"lang/fr/home.yaml": "title: [broken\n",
}

func newTestTranslator(t *testing.T) *YAMLTranslator {
	t.Helper()
	translator, err := NewYAMLTranslator(NewMemoryReader(testLangFiles), "en", []string{"en", "de", "fr"})
	require.NoError(t, err)
	return translator
}

func TestYAMLTranslator_Negotiate(t *testing.T) {
	translator := newTestTranslator(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"", "en"},
		{"de", "de"},
		{"en-US", "en"},
		{"de-CH,de;q=0.9,en;q=0.8", "de"},
		{"fr;q=0.9, en;q=0.5", "fr"},
		{"ja", "en"},
		{"not a locale!!", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, translator.Negotiate(tt.input))
		})
	}
}

func TestYAMLTranslator_Translate(t *testing.T) {
	translator := newTestTranslator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		locale   string
		key      string
		expected string
		found    bool
	}{
		{"default locale", "en", "home.title", "Welcome :name", true},
		{"negotiated locale", "de-DE", "home.title", "Willkommen :name", true},
		{"falls back to default", "de", "home.nav.about", "About", true},
		{"number leaf", "en", "home.nav.count", "3", true},
		{"map is not a translation", "en", "home.nav", "", false},
		{"list is not a translation", "en", "home.list", "", false},
		{"missing key", "en", "home.none", "", false},
		{"missing file", "en", "shop.title", "", false},
		{"key without file part", "en", "title", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, found, err := translator.Translate(ctx, tt.locale, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, text)
		})
	}

	t.Run("broken file", func(t *testing.T) {
		_, _, err := translator.Translate(ctx, "fr", "home.title")
		assert.Error(t, err)
	})
}

func TestYAMLTranslator_Reset(t *testing.T) {
	reader := NewMemoryReader(testLangFiles)
	translator, err := NewYAMLTranslator(reader, "en", nil, WithLangDir("lang"))
	require.NoError(t, err)
	ctx := context.Background()

	text, _, err := translator.Translate(ctx, "en", "home.title")
	require.NoError(t, err)
	assert.Equal(t, "Welcome :name", text)

	reader.Set("lang/en/home.yaml", "title: Hi\n")
	text, _, err = translator.Translate(ctx, "en", "home.title")
	require.NoError(t, err)
	assert.Equal(t, "Welcome :name", text, "parsed files are cached")

	translator.Reset()
	text, _, err = translator.Translate(ctx, "en", "home.title")
	require.NoError(t, err)
	assert.Equal(t, "Hi", text)
}

func TestNewYAMLTranslator_InvalidLocale(t *testing.T) {
	_, err := NewYAMLTranslator(NewMemoryReader(nil), "en", []string{"!!"})
	assert.Error(t, err)
}

func TestEngine_LangDirective(t *testing.T) {
	files := map[string]string{"pages/home.mix": `<h1><lang key="home.title"></lang></h1>`}
	for k, v := range testLangFiles {
		files[k] = v
	}
	reader := NewMemoryReader(files)
	translator, err := NewYAMLTranslator(reader, "en", []string{"de"})
	require.NoError(t, err)

	engine, err := New(WithReader(reader), WithTranslator(translator))
	require.NoError(t, err)
	ctx := context.Background()
	data := map[string]any{"name": "Ann"}

	out, err := engine.Render(ctx, "pages/home", data, &Request{Locale: "de-AT"})
	require.NoError(t, err)
	assert.Equal(t, "<h1><span>Willkommen Ann</span></h1>", out)

	out, err = engine.Render(ctx, "pages/home", data, nil)
	require.NoError(t, err)
	assert.Equal(t, "<h1><span>Welcome Ann</span></h1>", out)
}
