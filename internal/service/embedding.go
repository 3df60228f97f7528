package service

import (
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding returns a deterministic search vector for the given text:
// its rune length, vowel count and consonant count.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var length, vowels, consonants float32
	for _, r := range text {
		length++
		switch {
		case strings.ContainsRune("aeiouyàâäéèêëîïôöùûüÿœæ", r):
			vowels++
		case unicode.IsLetter(r):
			consonants++
		}
	}
	return pgvector.NewVector([]float32{length, vowels, consonants})
}

// recipeSearchText is the text a recipe is embedded from
func recipeSearchText(title, cuisine, description string) string {
	return strings.Join([]string{title, cuisine, description}, " ")
}
