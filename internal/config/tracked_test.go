package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCompetitors(t *testing.T) {
	t.Parallel()

	path := writeJSONFile(t, "competitors.json", `{
	  "competitors": [
	    {"name": "Acme", "aliases": ["Acme Corp"], "rss": ["https://acme.example/feed"]},
	    {"name": "Widgets Inc"}
	  ]
	}`)

	competitors, err := LoadCompetitors(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(competitors) != 2 {
		t.Fatalf("expected 2 competitors, got %d", len(competitors))
	}
	if competitors[0].Name != "Acme" || len(competitors[0].RSS) != 1 {
		t.Fatalf("unexpected first competitor: %+v", competitors[0])
	}
}

func TestLoadCompetitorsRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty list":  `{"competitors": []}`,
		"unnamed":     `{"competitors": [{"aliases": ["x"]}]}`,
		"not json":    `competitors: yaml`,
		"wrong shape": `[]`,
	}
	for name, body := range cases {
		path := writeJSONFile(t, "competitors.json", body)
		if _, err := LoadCompetitors(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	if _, err := LoadCompetitors(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("missing file: expected error")
	}
}

func TestLoadProfile(t *testing.T) {
	t.Parallel()

	path := writeJSONFile(t, "profile.json", `{"business": "fibre ISP", "region": "Gauteng"}`)
	raw, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("profile bytes must pass through")
	}

	bad := writeJSONFile(t, "bad.json", `not json at all`)
	if _, err := LoadProfile(bad); err == nil {
		t.Fatalf("invalid JSON profile must be rejected")
	}
}
