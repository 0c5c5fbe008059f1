package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 0.0, Percentage(0, 10))
	assert.Equal(t, 50.0, Percentage(5, 10))
	assert.Equal(t, 100.0, Percentage(10, 10))
	assert.Equal(t, 100.0, Percentage(25, 10), "progress past the criteria caps at 100")
}

func TestDefaultCatalog(t *testing.T) {
	names := map[string]bool{}
	for _, seed := range DefaultCatalog {
		assert.False(t, names[seed.Name], "duplicate badge name %s", seed.Name)
		names[seed.Name] = true
		assert.Greater(t, seed.CriteriaValue, 0, "%s needs a positive criteria value", seed.Name)
		assert.NotEmpty(t, seed.Category)
	}

	// The milestone rule is bespoke to this one badge.
	milestones := 0
	for _, seed := range DefaultCatalog {
		if seed.CriteriaType == CriteriaMilestone {
			milestones++
			assert.Equal(t, "Mood Improver", seed.Name)
		}
	}
	assert.Equal(t, 1, milestones)
}
