// Package famassist generates a short natural-language narration of the
// account-level swings between two compute() periods. It never sits on
// compute()'s call path: a model computes and rounds identically whether
// or not famassist is ever invoked.
package famassist

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/wrenfield/famengine/pkg/fam"
)

// Variance is one account's change between two periods.
type Variance struct {
	Account AccountLabel
	Prior   float64
	Current float64
	Delta   float64
}

// AccountLabel is exported as its own type so callers can format it without
// importing fam for this one purpose.
type AccountLabel = fam.AccountId

// Narrator calls Gemini to turn a list of Variances into a short prose
// summary. Model defaults to "gemini-2.0-flash-exp".
type Narrator struct {
	Model string
}

// NewNarrator returns a Narrator using the default model.
func NewNarrator() *Narrator {
	return &Narrator{}
}

// ComputeVariances diffs two periods' results for the accounts present in
// both, sorted by AccountId.
func ComputeVariances(prior, current map[fam.AccountId]float64) []Variance {
	ids := make([]string, 0, len(current))
	for id := range current {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	out := make([]Variance, 0, len(ids))
	for _, id := range ids {
		aid := fam.AccountId(id)
		cur := current[aid]
		prev, ok := prior[aid]
		if !ok {
			continue
		}
		out = append(out, Variance{Account: aid, Prior: prev, Current: cur, Delta: cur - prev})
	}
	return out
}

// Narrate sends the variances to Gemini and returns its prose summary.
func (n *Narrator) Narrate(ctx context.Context, period fam.PeriodId, variances []Variance) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("famassist: GEMINI_API_KEY environment variable not set")
	}

	model := n.Model
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("famassist: failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a financial analyst. Summarize account movements in two or three sentences, plain prose, no markdown headers."},
			},
		},
	}

	prompt := buildPrompt(period, variances)

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("famassist: generation failed: %w", err)
	}

	return result.Text(), nil
}

func buildPrompt(period fam.PeriodId, variances []Variance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Period %s movements:\n", period)
	for _, v := range variances {
		fmt.Fprintf(&b, "- %s: %.2f -> %.2f (%+.2f)\n", v.Account, v.Prior, v.Current, v.Delta)
	}
	return b.String()
}
