package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/concept-interview/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(concepts []entity.AppConcept) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", baseTitle)

	for i, concept := range concepts {
		fmt.Fprintf(&buf, "\n## %d. %s\n\n%s\n", i+1, concept.Name, concept.Description)

		if len(concept.Features) > 0 {
			fmt.Fprintf(&buf, "\nKey features:\n\n")
			for _, feature := range concept.Features {
				fmt.Fprintf(&buf, "- **%s**: %s\n", feature.Name, feature.Description)
			}
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
