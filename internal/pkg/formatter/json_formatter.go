package formatter

import (
	"encoding/json"

	"github.com/futig/concept-interview/internal/entity"
)

const (
	jsonContentType   = "application/json; charset=utf-8"
	jsonFileExtension = ".json"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (jf *JSONFormatter) Format(concepts []entity.AppConcept) ([]byte, error) {
	return json.MarshalIndent(concepts, "", "  ")
}

func (jf *JSONFormatter) ContentType() string {
	return jsonContentType
}

func (jf *JSONFormatter) FileExtension() string {
	return jsonFileExtension
}
