package fallback

import (
	"fmt"
	"strings"

	"ai-scheduler-be/pkg/ai/policy"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/classifier"
)

// BuildPrompt renders the closed intent catalog, the thread and pending
// context and the last historyTurns turns of conversation
func BuildPrompt(raw string, ctx classifier.Context, historyTurns int) string {
	var prompt strings.Builder

	prompt.WriteString("You are the intent router of a scheduling assistant. ")
	prompt.WriteString("Map the user's message to exactly one intent from the catalog below. ")
	prompt.WriteString("You never perform actions yourself and you never confirm pending decisions.\n\n")

	active := ctx.Active()

	prompt.WriteString("<intent_catalog version=\"" + intent.VocabularyVersion + "\">\n")
	for _, e := range intent.Catalog() {
		if !e.AIAllowed {
			continue
		}
		if active != nil && !policy.AllowedWhilePending(e.Name) {
			continue
		}
		fmt.Fprintf(&prompt, "- %s (%s): %s\n", e.Name, e.Effect, e.Description)
	}
	prompt.WriteString("</intent_catalog>\n\n")

	prompt.WriteString("<context>\n")
	fmt.Fprintf(&prompt, "now: %s\n", ctx.Now.Format("2006-01-02 15:04 Mon"))
	if ctx.ThreadID != "" {
		fmt.Fprintf(&prompt, "selected_thread: %s\n", ctx.ThreadID)
	} else {
		prompt.WriteString("selected_thread: none\n")
	}
	if active != nil {
		fmt.Fprintf(&prompt, "pending: %s", active.Kind())
		if active.Summary != "" {
			fmt.Fprintf(&prompt, " (%s)", active.Summary)
		}
		prompt.WriteString("\nOnly the intents listed above are possible until the pending item is answered.\n")
	} else {
		prompt.WriteString("pending: none\n")
	}
	prompt.WriteString("</context>\n\n")

	history := ctx.History
	if historyTurns >= 0 && len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	if len(history) > 0 {
		prompt.WriteString("<history>\n")
		for _, turn := range history {
			fmt.Fprintf(&prompt, "%s: %s\n", turn.Role, turn.Content)
		}
		prompt.WriteString("</history>\n\n")
	}

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"intent\": \"one catalog name, or unknown\",\n")
	prompt.WriteString("  \"confidence\": 0.8,\n")
	prompt.WriteString("  \"params\": {\"date\": \"YYYY-MM-DD\", \"start\": \"HH:MM\"},\n")
	prompt.WriteString("  \"meta\": {\"party_count\": \"one_on_one|group|pool\", \"participation\": \"all|any|quorum\", \"confirmation\": \"always|never|auto\"},\n")
	prompt.WriteString("  \"requires_confirm\": false,\n")
	prompt.WriteString("  \"clarifications\": [{\"field\": \"...\", \"question\": \"...\"}],\n")
	prompt.WriteString("  \"suggested_next_actions\": [],\n")
	prompt.WriteString("  \"message\": \"short reply to the user\"\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>\n\n")

	fmt.Fprintf(&prompt, "User: %s\n", raw)
	return prompt.String()
}
