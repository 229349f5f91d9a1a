// Package review asks an LLM for a second opinion on detected duplicate
// groups. Verdicts are advisory and never change grouping.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/contactmerge/internal/config"
	"github.com/agenthands/contactmerge/internal/core/common"
	"github.com/agenthands/contactmerge/internal/core/model"
	"github.com/agenthands/contactmerge/internal/llm"
)

// DefaultGroupPrompt takes the member listing and the match criteria.
const DefaultGroupPrompt = `The following contact records were grouped as duplicates of one person.

<CONTACTS>
%s
</CONTACTS>

Match criteria: %s

Do these records describe the same person?
Return a JSON object with "same_person" (bool), "confidence" (float between 0 and 1) and "reasoning" (short string).

Example JSON:
{"same_person": true, "confidence": 0.9, "reasoning": "Same phone number and near-identical names."}
`

// Verdict is the reviewer's opinion on one group.
type Verdict struct {
	SamePerson bool    `json:"same_person"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type Reviewer struct {
	LLM     llm.LLMClient
	Prompts config.ReviewPrompts
}

func NewReviewer(llmClient llm.LLMClient, prompts config.ReviewPrompts) *Reviewer {
	return &Reviewer{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// ReviewGroup returns the LLM verdict for members, which were linked
// because of criteria.
func (r *Reviewer) ReviewGroup(ctx context.Context, members []*model.Contact, criteria string) (*Verdict, error) {
	if len(members) < 2 {
		return nil, fmt.Errorf("review needs at least two contacts, got %d", len(members))
	}

	template := r.Prompts.Group
	if template == "" {
		template = DefaultGroupPrompt
	}
	prompt := fmt.Sprintf(template, serializeContacts(members), criteria)

	response, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate review: %w", err)
	}

	verdict, err := common.ParseJSON[Verdict](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse review result: %w", err)
	}
	verdict.Confidence = clamp(verdict.Confidence)

	return &verdict, nil
}

func serializeContacts(contacts []*model.Contact) string {
	var b strings.Builder
	for i, c := range contacts {
		if c == nil {
			continue
		}
		fmt.Fprintf(&b, "- #%d Name: %s", i+1, c.DisplayName())
		if len(c.Phones) > 0 {
			numbers := make([]string, len(c.Phones))
			for k, p := range c.Phones {
				numbers[k] = p.Number
			}
			fmt.Fprintf(&b, ", Phones: %s", strings.Join(numbers, "; "))
		}
		if len(c.Emails) > 0 {
			addrs := make([]string, len(c.Emails))
			for k, e := range c.Emails {
				addrs[k] = e.Address
			}
			fmt.Fprintf(&b, ", Emails: %s", strings.Join(addrs, "; "))
		}
		if c.Organization != "" {
			fmt.Fprintf(&b, ", Organization: %s", c.Organization)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
