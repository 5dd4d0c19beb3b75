package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bibleapi/pkg/domain"
)

const seed = `<?xml version="1.0" encoding="utf-8"?>
<XMLBIBLE biblename="World English Bible">
  <INFORMATION>
    <title>World English Bible</title>
    <identifier>WEB</identifier>
    <language>ENG</language>
  </INFORMATION>
  <BIBLEBOOK bnumber="1" bname="Genesis">
    <CHAPTER cnumber="1">
      <VERS vnumber="1">In the beginning, God created the heavens and the earth.</VERS>
      <VERS vnumber="2">The earth was formless and empty.</VERS>
    </CHAPTER>
  </BIBLEBOOK>
</XMLBIBLE>`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "web.xml")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	t.Setenv("VERSE_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	db := "sqlite://" + filepath.Join(dir, "verse.db")
	out, err := run(t, "--database-url", db, "import", path, "--license", "Public Domain")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "WEB: 2 verses in 1 books") {
		t.Fatalf("unexpected import output: %q", out)
	}
	return db
}

func TestLookup(t *testing.T) {
	db := setup(t)
	out, err := run(t, "--database-url", db, "lookup", "gen", "1:1-2", "--verse-numbers")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	var p domain.Passage
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if p.Reference != "Genesis 1:1-2" || len(p.Verses) != 2 || p.TranslationNote != "Public Domain" {
		t.Fatalf("unexpected passage: %+v", p)
	}
	if !strings.HasPrefix(p.Text, "(1) In the beginning") {
		t.Fatalf("verse numbers missing: %q", p.Text)
	}
}

func TestLookupErrors(t *testing.T) {
	db := setup(t)
	if _, err := run(t, "--database-url", db, "lookup", "exodus 1:1"); err == nil || err.Error() != "not found" {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := run(t, "--database-url", db, "lookup", "gen 1:1", "-t", "KJV"); err == nil || err.Error() != "translation not found" {
		t.Fatalf("expected translation not found, got %v", err)
	}
}

func TestRandomIsReproducibleWithSeed(t *testing.T) {
	db := setup(t)
	first, err := run(t, "--database-url", db, "random", "--seed", "7")
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	second, err := run(t, "--database-url", db, "random", "--seed", "7")
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if first != second {
		t.Fatalf("seeded draws differ:\n%s\n%s", first, second)
	}
	if !strings.Contains(first, `"translation_id": "WEB"`) {
		t.Fatalf("unexpected random output: %s", first)
	}
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("VERSE_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	if _, err := run(t, "migrate"); err == nil || !strings.Contains(err.Error(), "database url required") {
		t.Fatalf("expected database url error, got %v", err)
	}
}

func TestMigrate(t *testing.T) {
	t.Setenv("VERSE_CONFIG", "")
	db := "sqlite://" + filepath.Join(t.TempDir(), "verse.db")
	out, err := run(t, "--database-url", db, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if strings.TrimSpace(out) != "schema up to date" {
		t.Fatalf("unexpected output: %q", out)
	}
}
