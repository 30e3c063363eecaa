package keyboard

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/concept-interview/internal/entity"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Start interview", "action:start"),
		),
	)
}

// ChoicesKeyboard renders the current question's options as toggle buttons.
// Options toggle by index because labels can exceed Telegram's 64-byte
// callback data limit.
func (b *Builder) ChoicesKeyboard(choices []entity.Choice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices)+2)

	for i, choice := range choices {
		label := choice.Label
		if choice.Selected {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback("opt", fmt.Sprintf("%d", i))),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➡️ Next", "action:submit"),
		tgbotapi.NewInlineKeyboardButtonData("➕ More options", "action:more"),
	))

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", "action:reset"),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ConceptsKeyboard creates the completion controls: document downloads and
// restart
func (b *Builder) ConceptsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Download .md", "dl:markdown"),
			tgbotapi.NewInlineKeyboardButtonData("📕 Download .pdf", "dl:pdf"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📘 Download .docx", "dl:docx"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", "action:reset"),
		),
	)
}
