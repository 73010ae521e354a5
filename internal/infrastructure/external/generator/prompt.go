package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
)

// systemPrompt sets the generator's role and hard rules. The response
// shape itself is enforced by the response schema, so the prompt focuses
// on content quality and grading.
const systemPrompt = `You are a language-learning content generator for a practice engine.

You receive the learner's recent exercise results and a catalog of eligible exercise apps with their content shapes.

Rules:
- First grade every pending result: set is_correct and copy the exact question content into question_hash_content. Leave question_hash_content empty only when the original question cannot be identified.
- Then produce new practice tasks that target the learner's weaknesses visible in the results.
- Each task's content must follow the content shape of its app exactly.
- Write all learner-facing text in the requested language.
- Keep theory blocks short and concrete.`

// buildUserPrompt renders the generation request for the model.
func buildUserPrompt(req session.GeneratorRequest) (string, error) {
	var b strings.Builder

	b.WriteString("Language: ")
	b.WriteString(req.LanguagePreference)
	b.WriteString("\n\n")

	if req.Days > 0 {
		fmt.Fprintf(&b, "Produce a practice plan spanning %d days. Group tasks by day and give each day a focus.\n\n", req.Days)
	} else {
		b.WriteString("Produce a single practice session.\n\n")
	}

	b.WriteString("Eligible apps and their content shapes:\n")
	for _, app := range req.EligibleApps {
		fmt.Fprintf(&b, "- %s: %s\n", app.ID, app.ContentShape)
	}
	b.WriteString("\n")

	b.WriteString("Pending results to grade:\n")
	outcomes, err := json.Marshal(promptOutcomes(req.PendingOutcomes))
	if err != nil {
		return "", fmt.Errorf("marshal outcomes: %w", err)
	}
	b.Write(outcomes)

	return b.String(), nil
}

// promptOutcome is the trimmed outcome view the model sees. Internal
// fields like user id stay out of the prompt.
type promptOutcome struct {
	ResultID string `json:"result_id"`
	AppID    string `json:"app_id"`
	Content  string `json:"content"`
}

func promptOutcomes(outcomes []*session.RawOutcome) []promptOutcome {
	result := make([]promptOutcome, len(outcomes))
	for i, o := range outcomes {
		result[i] = promptOutcome{
			ResultID: o.ID,
			AppID:    o.AppID,
			Content:  o.Content,
		}
	}
	return result
}
