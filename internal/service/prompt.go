package service

import "strings"

// ChefPersona opens every generation system prompt
const ChefPersona = "Tu es un chef cuisinier expert qui génère des recettes détaillées au format JSON. \n    \nGénère une recette complète et appétissante basée sur la demande de l'utilisateur."

// RecipeSchemaInstruction tells the model the exact JSON shape to answer with
const RecipeSchemaInstruction = `

Réponds UNIQUEMENT avec un objet JSON valide (pas de markdown, pas de texte avant ou après) avec cette structure exacte:
{
  "title": "Nom de la recette",
  "description": "Description appétissante",
  "prep_time_minutes": 15,
  "cook_time_minutes": 30,
  "servings": 4,
  "difficulty": "easy|medium|hard",
  "cuisine_type": "Type de cuisine",
  "chef_tip": "Conseil du chef",
  "nutritional_info": {
    "calories": 450,
    "protein": 25,
    "carbs": 35,
    "fat": 15
  },
  "ingredients": [
    {"name": "Ingrédient", "quantity": 200, "unit": "g", "order_index": 0}
  ],
  "steps": [
    {"step_number": 1, "instruction": "Première étape détaillée"}
  ]
}`

const (
	restrictionsClause = "\n\nRégimes alimentaires à respecter: "
	allergiesClause    = "\n\nAllergies à éviter: "
)

// BuildSystemPrompt assembles persona, optional constraint clauses and the schema block.
// A clause is left out entirely when its list is empty.
func BuildSystemPrompt(persona string, restrictions, allergies []string, schema string) string {
	var b strings.Builder
	b.WriteString(persona)
	if len(restrictions) > 0 {
		b.WriteString(restrictionsClause)
		b.WriteString(strings.Join(restrictions, ", "))
	}
	if len(allergies) > 0 {
		b.WriteString(allergiesClause)
		b.WriteString(strings.Join(allergies, ", "))
	}
	b.WriteString(schema)
	return b.String()
}

// DefaultSystemPrompt builds the French chef prompt for prefs
func DefaultSystemPrompt(prefs Preferences) string {
	return BuildSystemPrompt(ChefPersona, prefs.Restrictions, prefs.Allergies, RecipeSchemaInstruction)
}
