package translations

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Catalog is one language's message key set.
type Catalog map[string]string

// Manager holds the loaded message catalogs. Interface text lives in
// per-language JSON files so it can be edited without a rebuild.
type Manager struct {
	dir         string
	defaultLang string
	catalogs    map[string]Catalog
}

// Load reads dir/<lang>.json for each language. A missing or broken file
// degrades to an empty catalog for that language rather than failing
// startup.
func Load(dir string, languages []string, defaultLang string) *Manager {
	m := &Manager{
		dir:         dir,
		defaultLang: defaultLang,
		catalogs:    make(map[string]Catalog, len(languages)),
	}
	for _, lang := range languages {
		path := filepath.Join(dir, lang+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Translation file not found: %s", path)
			m.catalogs[lang] = Catalog{}
			continue
		}
		var catalog Catalog
		if err := json.Unmarshal(data, &catalog); err != nil {
			log.Printf("Error parsing %s: %v", path, err)
			m.catalogs[lang] = Catalog{}
			continue
		}
		m.catalogs[lang] = catalog
		log.Printf("Loaded %s translations (%d keys)", lang, len(catalog))
	}
	return m
}

// Catalog returns the catalog for language, falling back to the default
// language for unknown codes.
func (m *Manager) Catalog(language string) Catalog {
	if c, ok := m.catalogs[language]; ok {
		return c
	}
	return m.catalogs[m.defaultLang]
}

// Text returns one message, falling back to the default language's value
// and then to fallback when the key is missing everywhere.
func (m *Manager) Text(language, key, fallback string) string {
	if v, ok := m.Catalog(language)[key]; ok && v != "" {
		return v
	}
	if v, ok := m.catalogs[m.defaultLang][key]; ok && v != "" {
		return v
	}
	return fallback
}
