package config

import (
	"encoding/json"
	"fmt"
	"os"

	"rivalwatch/internal/domain"
)

// LoadCompetitors reads the tracked-entity configuration. Any problem here is
// fatal for a collection run: no artifact may be written from a partial or
// unreadable competitor set.
func LoadCompetitors(path string) ([]domain.Competitor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read competitors config %s: %w", path, err)
	}

	var doc struct {
		Competitors []domain.Competitor `json:"competitors"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse competitors config %s: %w", path, err)
	}

	if len(doc.Competitors) == 0 {
		return nil, fmt.Errorf("competitors config %s lists no competitors", path)
	}
	for i, c := range doc.Competitors {
		if c.Name == "" {
			return nil, fmt.Errorf("competitors config %s: entry %d has no name", path, i)
		}
	}

	return doc.Competitors, nil
}

// LoadProfile reads the operator profile document. The profile is passed
// verbatim into model-backed summarization, so it only has to be valid JSON.
func LoadProfile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("profile %s is not valid JSON", path)
	}
	return raw, nil
}
