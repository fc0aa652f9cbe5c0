package gamification

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

//go:embed achievements.yaml
var achievementsYAML []byte

type catalogFile struct {
	Achievements []models.Achievement `yaml:"achievements"`
}

// ParseCatalog decodes an achievement catalog, keeping file order.
func ParseCatalog(data []byte) ([]models.Achievement, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse achievement catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Achievements))
	out := make([]models.Achievement, 0, len(file.Achievements))
	for _, a := range file.Achievements {
		a.ID = strings.TrimSpace(a.ID)
		if a.ID == "" {
			return nil, fmt.Errorf("achievement without id: %q", a.Name)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}

var defaultCatalog = mustParseCatalog(achievementsYAML)

func mustParseCatalog(data []byte) []models.Achievement {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns a copy of the built-in achievements
func DefaultCatalog() []models.Achievement {
	return append([]models.Achievement(nil), defaultCatalog...)
}
