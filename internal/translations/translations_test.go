package translations

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, dir, lang, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, lang+".json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "uz", `{"question": "Savol", "help": "Yordam"}`)
	writeCatalog(t, dir, "en", `{"question": "Question"}`)

	m := Load(dir, []string{"uz", "ru", "en"}, "uz")

	if got := m.Text("en", "question", "?"); got != "Question" {
		t.Errorf("Expected English text, got %q", got)
	}
	// Missing key falls back to the default language.
	if got := m.Text("en", "help", "?"); got != "Yordam" {
		t.Errorf("Expected default-language fallback, got %q", got)
	}
	// Missing everywhere falls back to the caller's default.
	if got := m.Text("en", "nonexistent", "fallback"); got != "fallback" {
		t.Errorf("Expected caller fallback, got %q", got)
	}
	// Unknown language uses the default catalog.
	if got := m.Text("fr", "question", "?"); got != "Savol" {
		t.Errorf("Expected default catalog for unknown language, got %q", got)
	}
}

func TestLoadMissingFileDegrades(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "uz", `{"question": "Savol"}`)
	// ru.json absent, en.json broken
	writeCatalog(t, dir, "en", `{not json`)

	m := Load(dir, []string{"uz", "ru", "en"}, "uz")

	if got := m.Text("ru", "question", "?"); got != "Savol" {
		t.Errorf("Missing catalog must fall back to default, got %q", got)
	}
	if got := m.Text("en", "question", "?"); got != "Savol" {
		t.Errorf("Broken catalog must fall back to default, got %q", got)
	}
}
