package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt(t *testing.T) {
	tests := []struct {
		name         string
		restrictions []string
		allergies    []string
		want         string
	}{
		{
			name: "no constraints",
			want: "P" + "S",
		},
		{
			name:         "restrictions only",
			restrictions: []string{"vegan", "sans gluten"},
			want:         "P\n\nRégimes alimentaires à respecter: vegan, sans gluten" + "S",
		},
		{
			name:      "allergies only",
			allergies: []string{"arachides"},
			want:      "P\n\nAllergies à éviter: arachides" + "S",
		},
		{
			name:         "both in order",
			restrictions: []string{"halal"},
			allergies:    []string{"lait", "œufs"},
			want:         "P\n\nRégimes alimentaires à respecter: halal\n\nAllergies à éviter: lait, œufs" + "S",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSystemPrompt("P", tt.restrictions, tt.allergies, "S"))
		})
	}
}

func TestDefaultSystemPrompt(t *testing.T) {
	prompt := DefaultSystemPrompt(Preferences{})

	assert.True(t, strings.HasPrefix(prompt, ChefPersona))
	assert.True(t, strings.HasSuffix(prompt, RecipeSchemaInstruction))
	assert.NotContains(t, prompt, "Régimes alimentaires")
	assert.NotContains(t, prompt, "Allergies à éviter")

	prompt = DefaultSystemPrompt(Preferences{Restrictions: []string{"végétarien"}})
	assert.Contains(t, prompt, "Régimes alimentaires à respecter: végétarien")
	assert.Less(t, strings.Index(prompt, "végétarien"), strings.Index(prompt, "Réponds UNIQUEMENT"))
}
