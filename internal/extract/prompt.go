package extract

import (
	"fmt"
	"strings"

	"github.com/Veraticus/due-process/internal/model"
)

// BuildPrompt embeds the sanitized batch into the extraction instruction,
// one numbered block per message.
func BuildPrompt(batch []model.SanitizedMessage) string {
	var sb strings.Builder

	sb.WriteString("You are a parser for credit card billing statement SMS messages.\n\n")
	sb.WriteString("Task:\n")
	sb.WriteString("- For EACH numbered message below, extract the billing fields.\n")
	sb.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	sb.WriteString("- Output a JSON array with one object per message.\n\n")
	sb.WriteString("Each object must have these fields:\n")
	sb.WriteString("- \"index\": number, the [n] marker of the source message\n")
	sb.WriteString("- \"cardLast4\": string, the last 2-4 digits of the card, or \"\" if unknown\n")
	sb.WriteString("- \"amount\": number, the total amount due, or 0 if unknown\n")
	sb.WriteString("- \"dueDate\": string, ISO format \"YYYY-MM-DD\", or \"\" if unknown\n")
	sb.WriteString("- \"minDue\": number, the minimum amount due, or 0 if unknown\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Never invent values that are not in the message text.\n")
	sb.WriteString("- Return ONLY valid raw JSON.\n")
	sb.WriteString("- Do NOT wrap the response in code fences.\n")
	sb.WriteString("- Output must begin with \"[\" and end with \"]\".\n\n")
	sb.WriteString("Messages:\n")

	for _, msg := range batch {
		fmt.Fprintf(&sb, "[%d] from %s: %s\n", msg.Index, msg.Sender, msg.Body)
	}

	return sb.String()
}
