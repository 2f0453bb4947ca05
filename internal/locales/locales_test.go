package locales

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() *Store {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewStore(map[string]map[string]string{
		"en": {
			"greeting":   "Hello, {name}!",
			"plain":      "no placeholders here",
			"only_in_en": "english only",
		},
		"ru": {
			"greeting": "Привет, {name}!",
		},
	}, logger)
}

func TestTSubstitutesPlaceholders(t *testing.T) {
	s := testStore()
	assert.Equal(t, "Hello, alice!", s.T("en", "greeting", "name", "alice"))
	assert.Equal(t, "Привет, bob!", s.T("ru", "greeting", "name", "bob"))
}

func TestTFallsBackToDefaultLanguage(t *testing.T) {
	s := testStore()
	assert.Equal(t, "no placeholders here", s.T("fa", "plain"))
	assert.Equal(t, "english only", s.T("ru", "only_in_en"), "missing key falls back per-key, not per-table")
}

func TestTFallsBackToKey(t *testing.T) {
	s := testStore()
	assert.Equal(t, "no_such_key", s.T("en", "no_such_key"))
}

func TestTOddArgsReturnsRawTemplate(t *testing.T) {
	s := testStore()
	assert.Equal(t, "Hello, {name}!", s.T("en", "greeting", "name"))
}

func TestTNonStringValues(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := NewStore(map[string]map[string]string{
		"en": {"tally": "ok={ok} fail={fail}"},
	}, logger)

	assert.Equal(t, "ok=3 fail=0", s.T("en", "tally", "ok", 3, "fail", 0))
}

func TestLanguages(t *testing.T) {
	s := testStore()
	assert.ElementsMatch(t, []string{"en", "ru"}, s.Languages())
}

func TestLoad(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	dir := t.TempDir()

	path := filepath.Join(dir, "locales.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"en":{"hi":"Hi"}}`), 0o644))

	s, err := Load(path, logger)
	require.NoError(t, err)
	assert.Equal(t, "Hi", s.T("en", "hi"))
}

func TestLoadFailures(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"), logger)
	assert.Error(t, err)

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{`), 0o644))
	_, err = Load(badJSON, logger)
	assert.Error(t, err)

	noDefault := filepath.Join(dir, "nodefault.json")
	require.NoError(t, os.WriteFile(noDefault, []byte(`{"ru":{"hi":"Привет"}}`), 0o644))
	_, err = Load(noDefault, logger)
	assert.Error(t, err, "a table without the default language cannot serve fallbacks")
}
