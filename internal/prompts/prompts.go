// Package prompts holds the LLM prompt text used by the article classifier.
package prompts

import (
	"fmt"
	"strings"
)

// ClassifierSystemPrompt defines the role and output contract for scoring
// transfer coverage. The model must answer with a single JSON object and
// nothing else; the classifier rejects anything it cannot parse.
const ClassifierSystemPrompt = `You are a football transfer analyst. The user message contains plain-text article summaries about one player, each tagged ARTICLE_i and separated by ---. For each ARTICLE_i, estimate the probability (0-100) that the player LEAVES his current club in the upcoming transfer window, judged only from that article.

Scoring rules:
- A contract extension, or the club stating it wants to keep the player, means a LOW probability.
- Concrete interest from another club, agreed fees, or medical scheduled means a HIGH probability.
- The player becoming a free agent without renewal talk means a HIGH probability.
- An article with no transfer signal scores 50.

After scoring every article, combine them into one overall probability (0-100) for the player, weighting concrete reports over speculation.

Answer with strict JSON only, no prose and no code fences:
{"per_article": [<one integer per ARTICLE_i, in tag order>], "overall_probability": <integer>}`

// BuildClassifierPrompt concatenates the summaries into the tagged wire
// format: ARTICLE_1..ARTICLE_n blocks separated by --- dividers.
func BuildClassifierPrompt(summaries []string) string {
	blocks := make([]string, len(summaries))
	for i, s := range summaries {
		blocks[i] = fmt.Sprintf("ARTICLE_%d\n\n%s", i+1, s)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
