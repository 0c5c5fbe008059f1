package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mannMitraAPI/config"
)

func TestDetermineHelpline(t *testing.T) {
	tests := []struct {
		name     string
		location string
		keywords []string
		want     string
	}{
		{"no signals defaults to national", "", nil, "national"},
		{"unknown location defaults to national", "bangalore", []string{"suicide"}, "national"},
		{"delhi routes to vandrevala", "Delhi", []string{"suicide"}, "vandrevala"},
		{"ncr routes to vandrevala", "Gurgaon NCR", []string{"suicide"}, "vandrevala"},
		{"chennai routes to sneha", "Chennai", []string{"suicide"}, "sneha"},
		{"tamil nadu routes to sneha", "somewhere in Tamil Nadu", []string{"suicide"}, "sneha"},
		{"mumbai stays national", "Mumbai", []string{"suicide"}, "national"},
		{"exam keyword overrides location", "Chennai", []string{"exam pressure"}, "student_helpline"},
		{"student keyword overrides location", "Delhi", []string{"student stress"}, "student_helpline"},
		{"abuse keyword overrides location", "Delhi", []string{"abuse at home"}, "women_helpline"},
		{"domestic keyword routes to women helpline", "", []string{"domestic violence"}, "women_helpline"},
		{"student marker wins over abuse marker", "", []string{"exam", "abuse"}, "student_helpline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineHelpline(tt.location, tt.keywords))
		})
	}
}

func TestDetermineHelplineTargetsExist(t *testing.T) {
	// Every routable target must have a directory entry to surface to users.
	targets := []string{"national", "vandrevala", "sneha", "student_helpline", "women_helpline"}
	for _, target := range targets {
		_, ok := config.Helplines[target]
		assert.True(t, ok, "helpline directory missing %s", target)
	}
}

func TestTruncateSessionID(t *testing.T) {
	assert.Equal(t, "short", truncateSessionID("short"))
	assert.Equal(t, "12345678...", truncateSessionID("1234567890abcdef"))
	assert.Equal(t, "12345678", truncateSessionID("12345678"))
}
