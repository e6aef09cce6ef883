package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/promptsentry/promptscan/pkg/policy"
)

const maxExamplesPerCategory = 5

const evaluationInstructions = `You are a content safety classifier. Your task is to determine if the user's input
contains unsafe content according to our content policies.

Analyze the input and determine if it violates any of the content policy categories.
Content can violate multiple categories simultaneously, so check each category thoroughly.

For each category you consider, provide clear reasoning about why the content does or does not
violate that category's policy. Focus on being precise and specific in your assessment.

Respond in the following JSON format:
{
  "is_safe": true/false,
  "categories": [
    {
      "id": "category_id",
      "name": "category_name",
      "confidence": 0.0-1.0 (your confidence level)
    }
  ],
  "reasoning": "Detailed explanation of why the content is safe or unsafe, including which specific policies it violates and how"
}

If the content is safe, return is_safe as true and an empty categories array, but still provide reasoning about why it's safe.
If the content violates multiple categories, list them all in the categories array with their respective confidence levels.`

// SystemInstructions assembles the judge's system prompt: the fixed
// classification instructions followed by the serialized category policy.
// Category order is stable (sorted by id) so identical snapshots produce
// identical prompts.
func SystemInstructions(categories map[string]*policy.CategoryDefinition) string {
	var b strings.Builder
	b.WriteString(evaluationInstructions)
	b.WriteString("\n\n")
	b.WriteString(formatCategories(categories))
	b.WriteString("\n")
	b.WriteString(formatExamples(categories))
	return b.String()
}

// UserContent wraps the text under test for the judge's user turn.
func UserContent(text string) string {
	return "Input to evaluate: " + text
}

func sortedCategoryIDs(categories map[string]*policy.CategoryDefinition) []string {
	ids := make([]string, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func formatCategories(categories map[string]*policy.CategoryDefinition) string {
	var b strings.Builder
	b.WriteString("Content Policy Categories:\n")
	for _, id := range sortedCategoryIDs(categories) {
		c := categories[id]
		fmt.Fprintf(&b, "%s. %s: %s\n", id, c.Name, c.Description)
		if len(c.Examples) > 0 {
			fmt.Fprintf(&b, "   Reasoning: Content that asks for or provides information about %s violates safety guidelines. ",
				strings.ToLower(c.Name))
			fmt.Fprintf(&b, "For example, %q would be unsafe because it explicitly seeks harmful outcomes.\n", c.Examples[0])
		}
	}
	return b.String()
}

func formatExamples(categories map[string]*policy.CategoryDefinition) string {
	var b strings.Builder
	b.WriteString("Examples of unsafe content by category:\n")
	for _, id := range sortedCategoryIDs(categories) {
		c := categories[id]
		fmt.Fprintf(&b, "\n%s. %s:\n", id, c.Name)
		examples := c.Examples
		if len(examples) > maxExamplesPerCategory {
			examples = examples[:maxExamplesPerCategory]
		}
		for _, example := range examples {
			fmt.Fprintf(&b, "  - %s\n", example)
		}
	}
	return b.String()
}
