package incidents

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var embeddedSeed []byte

// SeedProvider supplies the initial incident collection.
type SeedProvider interface {
	Incidents(ctx context.Context) ([]domain.Incident, error)
}

// NewSeedProvider returns a provider reading path, or the built-in seed when path is empty.
func NewSeedProvider(path string) SeedProvider {
	if path == "" {
		return EmbeddedSeed{}
	}
	return FileSeed{Path: path}
}

// EmbeddedSeed serves the incidents compiled into the binary.
type EmbeddedSeed struct{}

// Incidents implements SeedProvider.
func (EmbeddedSeed) Incidents(_ context.Context) ([]domain.Incident, error) {
	return ParseSeed(embeddedSeed)
}

// FileSeed reads incidents from a YAML file.
type FileSeed struct {
	Path string
}

// Incidents implements SeedProvider.
func (s FileSeed) Incidents(_ context.Context) ([]domain.Incident, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", s.Path, err)
	}

	items, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", s.Path, err)
	}

	slog.Info("seed loaded", "path", s.Path, "incidents", len(items))
	return items, nil
}

type seedDocument struct {
	Incidents []seedRecord `yaml:"incidents"`
}

type seedRecord struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`
	ReportedAt  string `yaml:"reported_at"`
}

// ParseSeed decodes a YAML seed document. Ids must be present and unique,
// severities known and timestamps in RFC 3339.
func ParseSeed(data []byte) ([]domain.Incident, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	seen := make(map[string]struct{}, len(doc.Incidents))
	items := make([]domain.Incident, 0, len(doc.Incidents))

	for i, rec := range doc.Incidents {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: incident #%d has no id", ErrInvalidSeed, i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}

		if strings.TrimSpace(rec.Title) == "" {
			return nil, fmt.Errorf("%w: incident %s has no title", ErrInvalidSeed, id)
		}

		severity, err := ParseSeverity(rec.Severity)
		if err != nil {
			return nil, fmt.Errorf("%w: incident %s: %v", ErrInvalidSeed, id, err)
		}

		reportedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(rec.ReportedAt))
		if err != nil {
			return nil, fmt.Errorf("%w: incident %s: reported_at: %v", ErrInvalidSeed, id, err)
		}

		items = append(items, domain.Incident{
			ID:          id,
			Title:       rec.Title,
			Description: rec.Description,
			Severity:    severity,
			ReportedAt:  reportedAt,
		})
	}

	return items, nil
}
