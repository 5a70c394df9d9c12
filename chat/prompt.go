package chat

import (
	"strings"

	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/core"
)

// groundingPreamble introduces retrieved poems in the prompt.
const groundingPreamble = "以下是与用户问题相关的诗词资料，可供参考：\n\n"

// renderGrounding formats retrieved poems into a system message body.
// Returns "" when there are no hits, in which case no grounding message
// is added to the prompt.
func renderGrounding(hits []*core.PoemHit) string {
	if len(hits) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(groundingPreamble)
	for i, hit := range hits {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("《")
		sb.WriteString(hit.Poem.Title)
		sb.WriteString("》 ")
		sb.WriteString(hit.Poem.Author)
		sb.WriteString("\n")
		sb.WriteString(hit.Poem.Body)
	}
	return sb.String()
}

// assemblePrompt builds the model message sequence for one turn.
// Order: agent system prompt, conversation history, optional grounding
// system message, then the user input.
func assemblePrompt(systemPrompt string, history []*core.Message, grounding, input string) []ai.Message {
	messages := make([]ai.Message, 0, len(history)+3)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})

	for _, m := range history {
		messages = append(messages, ai.Message{Role: promptRole(m.Role), Content: m.Content})
	}

	if grounding != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: grounding})
	}

	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: input})
	return messages
}

// promptRole maps a stored message role onto a model message role.
func promptRole(role core.Role) string {
	switch role {
	case core.RoleSystem:
		return ai.RoleSystem
	case core.RoleAssistant:
		return ai.RoleAssistant
	default:
		return ai.RoleUser
	}
}
