package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/labellens/backend/internal/domain"
)

// SystemPrompt frames the model as an ingredient analyst that answers in JSON only
const SystemPrompt = "You are a food and consumer-product ingredient analyst. " +
	"You assess ingredients for consumer health concerns and respond with a single JSON object and nothing else."

// responseSchema is the exact shape the orchestrator parses
const responseSchema = `{
  "product": {"name": "string", "category": "string"},
  "ingredients": [
    {
      "name": "string",
      "category": "string",
      "description": "string",
      "healthRating": "safe | caution | warning | danger",
      "concerns": ["string"],
      "benefits": ["string"],
      "isVegan": true,
      "isNatural": true,
      "tags": ["string"]
    }
  ],
  "overall_rating": 0,
  "letter_grade": "A | B | C | D | F",
  "personalized_warnings": ["string"],
  "personalized_advice": ["string"],
  "confidence": 0.0,
  "disclaimer": "string"
}`

// BuildPrompt renders the user prompt for an analysis request
func BuildPrompt(req *domain.OracleRequest) string {
	var b strings.Builder

	b.WriteString("Analyze the ingredients of the following product.\n\n")
	fmt.Fprintf(&b, "Product name: %s\n", req.ProductName)
	fmt.Fprintf(&b, "Product category: %s\n", req.ProductCategory)
	if req.Country != "" {
		fmt.Fprintf(&b, "Country: %s (apply this region's regulatory context)\n", req.Country)
	}

	b.WriteString("\nIngredients (from an OCR scan, may contain recognition errors):\n")
	b.WriteString(req.RawIngredients)
	b.WriteString("\n")

	if req.UserProfile != nil {
		if profile, err := json.MarshalIndent(req.UserProfile, "", "  "); err == nil {
			b.WriteString("\nUser health profile. Personalize warnings and advice for it:\n")
			b.Write(profile)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("\nNo user profile was provided. Leave personalized_warnings and personalized_advice general.\n")
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Rate every ingredient as safe, caution, warning or danger.\n")
	b.WriteString("- overall_rating is an integer from 0 (worst) to 100 (best).\n")
	b.WriteString("- letter_grade is one of A, B, C, D, F.\n")
	b.WriteString("- confidence is a number from 0 to 1 reflecting how legible the ingredient text was.\n")
	b.WriteString("- Correct obvious OCR misspellings of ingredient names.\n")
	b.WriteString("\nRespond with JSON only, no markdown, using exactly this schema:\n")
	b.WriteString(responseSchema)
	b.WriteString("\n")

	return b.String()
}
