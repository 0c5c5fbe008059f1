package services

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"mannMitraAPI/internal/apperr"
	"mannMitraAPI/internal/myth"
)

// MythsFactsService serves the static mental health awareness catalog. The
// catalog is loaded once at startup and never written to.
type MythsFactsService struct {
	items []myth.MythFact
}

func NewMythsFactsService(path string) (*MythsFactsService, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read myths catalog: %w", err)
	}

	var items []myth.MythFact
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse myths catalog: %w", err)
	}

	return &MythsFactsService{items: items}, nil
}

// NewMythsFactsServiceFromItems wraps an already-built catalog; used by tests.
func NewMythsFactsServiceFromItems(items []myth.MythFact) *MythsFactsService {
	return &MythsFactsService{items: items}
}

// GetMythsFacts returns the catalog filtered by category and language.
// Empty filters match everything.
func (s *MythsFactsService) GetMythsFacts(category, language string) []myth.MythFact {
	result := []myth.MythFact{}
	for _, m := range s.items {
		if category != "" && m.Category != category {
			continue
		}
		if language != "" && m.Language != language {
			continue
		}
		result = append(result, m)
	}
	return result
}

// GetRandom picks one myth/fact pair, honoring the same filters.
func (s *MythsFactsService) GetRandom(category, language string) (*myth.MythFact, error) {
	pool := s.GetMythsFacts(category, language)
	if len(pool) == 0 {
		return nil, fmt.Errorf("no myths match the given filters: %w", apperr.ErrNotFound)
	}
	picked := pool[rand.Intn(len(pool))]
	return &picked, nil
}

// GetByID looks up one pair by its catalog id.
func (s *MythsFactsService) GetByID(id string) (*myth.MythFact, error) {
	for _, m := range s.items {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("myth %s: %w", id, apperr.ErrNotFound)
}

// Search matches the query against myth and fact text, case-insensitively.
func (s *MythsFactsService) Search(query, language string) []myth.MythFact {
	q := strings.ToLower(strings.TrimSpace(query))
	result := []myth.MythFact{}
	if q == "" {
		return result
	}
	for _, m := range s.items {
		if language != "" && m.Language != language {
			continue
		}
		if strings.Contains(strings.ToLower(m.Myth), q) || strings.Contains(strings.ToLower(m.Fact), q) {
			result = append(result, m)
		}
	}
	return result
}

// Categories lists the distinct categories in the catalog, sorted.
func (s *MythsFactsService) Categories() []string {
	seen := map[string]bool{}
	categories := []string{}
	for _, m := range s.items {
		if !seen[m.Category] {
			seen[m.Category] = true
			categories = append(categories, m.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
