package locales

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLanguage is the fallback when a language has no translation table
const DefaultLanguage = "en"

// Store is the translation table: language code -> message key -> template
// with {name} placeholders.
type Store struct {
	languages map[string]map[string]string
	logger    *logrus.Logger
}

// Load reads the locales document. The bot cannot render a single message
// without it, so a missing or malformed file is a startup failure.
func Load(path string, logger *logrus.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locales file: %w", err)
	}

	languages := make(map[string]map[string]string)
	if err := json.Unmarshal(data, &languages); err != nil {
		return nil, fmt.Errorf("locales file is not valid JSON: %w", err)
	}
	if _, ok := languages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("locales file has no %q table", DefaultLanguage)
	}

	return &Store{languages: languages, logger: logger}, nil
}

// NewStore builds a store from an in-memory table (used by tests and the
// bulk runner snapshot).
func NewStore(languages map[string]map[string]string, logger *logrus.Logger) *Store {
	return &Store{languages: languages, logger: logger}
}

// T resolves a message template and substitutes {name} placeholders. Args
// are alternating name/value pairs. A missing language falls back to the
// default language; a missing key falls back to the key itself.
func (s *Store) T(lang, key string, args ...any) string {
	table, ok := s.languages[lang]
	if !ok {
		table = s.languages[DefaultLanguage]
	}

	template, ok := table[key]
	if !ok {
		template = s.languages[DefaultLanguage][key]
	}
	if template == "" {
		template = key
	}

	if len(args) == 0 {
		return template
	}
	if len(args)%2 != 0 {
		s.logger.Warnf("Odd argument count for locale key %s", key)
		return template
	}

	pairs := make([]string, 0, len(args))
	for i := 0; i < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			continue
		}
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Languages returns the configured language codes
func (s *Store) Languages() []string {
	codes := make([]string, 0, len(s.languages))
	for code := range s.languages {
		codes = append(codes, code)
	}
	return codes
}
