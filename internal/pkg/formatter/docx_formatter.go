package formatter

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unioffice/document"

	"github.com/futig/concept-interview/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(concepts []entity.AppConcept) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titleRun := titlePar.AddRun()
	titleRun.AddText(baseTitle)

	for i, concept := range concepts {
		headPar := doc.AddParagraph()
		headPar.SetStyle("Heading2")
		headRun := headPar.AddRun()
		headRun.AddText(fmt.Sprintf("%d. %s", i+1, concept.Name))

		descPar := doc.AddParagraph()
		descRun := descPar.AddRun()
		descRun.AddText(concept.Description)

		for _, feature := range concept.Features {
			featPar := doc.AddParagraph()
			nameRun := featPar.AddRun()
			nameRun.Properties().SetBold(true)
			nameRun.AddText(feature.Name + ": ")
			descRun := featPar.AddRun()
			descRun.AddText(feature.Description)
		}

		doc.AddParagraph()
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
