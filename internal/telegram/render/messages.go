package render

import (
	"fmt"
	"strings"

	"github.com/futig/concept-interview/internal/entity"
)

// Static bot messages
const (
	MsgWelcome = `🤖 I help turn a vague app idea into concrete concepts.

Describe the app you have in mind, answer a few multiple-choice questions, and I will suggest several directions to build it.

Press the button below to begin.`

	MsgAskIdea = `💡 Describe the app you want to build.

One or two sentences are enough, for example: "An app that helps me plan workouts with friends".`

	MsgPromptRejected = `🤔 I could not recognize a concrete app idea in that. Try describing what the app should do and for whom.`

	MsgNoSession = "No active interview. Use /start"

	MsgNoSelection = "☝️ Select at least one option before pressing Next."

	MsgReset = "🔄 Starting over. Describe your app idea."

	MsgUseButtons = "☝️ Answer with the buttons above, or press Start over."

	ErrGeneric      = "❌ Something went wrong. Try again or press /start"
	ErrTimeout      = "⏳ The request took too long. Please try again."
	ErrNetworkIssue = "📡 Connection trouble. Please try again in a moment."
	ErrGateway      = "🤖 The model is unavailable right now. Please try again."
)

// Question renders the current question with its round counter
func Question(c *entity.Conversation, maxQuestions int) string {
	return fmt.Sprintf("❓ Question %d of %d\n\n%s", c.QuestionCount, maxQuestions, c.Question)
}

// Concepts renders the final synthesized concepts
func Concepts(concepts []entity.AppConcept) string {
	var sb strings.Builder
	sb.WriteString("🎉 Done! Here are the app concepts based on your answers:\n")

	for i, concept := range concepts {
		sb.WriteString(fmt.Sprintf("\n%d. %s\n%s\n", i+1, concept.Name, concept.Description))
		for _, feature := range concept.Features {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", feature.Name, feature.Description))
		}
	}

	return sb.String()
}
