package llm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"plan_advisor/src/logger"
	"plan_advisor/src/model"
)

// Constants for parsing configuration
const (
	DefaultRecordDelimiter     = "##"
	DefaultTupleDelimiter      = "<||>"
	DefaultCompletionDelimiter = "<|COMPLETE|>"
	MaxTupleLength             = 2000
	MaxEntityTextLength        = 500
)

// TupleParser reads delimiter-separated entity tuples such as
// "(entity<||>Austin<||>LOC<||>0.99)##(entity<||>40<||>CARDINAL<||>0.97)<|COMPLETE|>"
type TupleParser struct {
	RecordDelimiter     string
	TupleDelimiter      string
	CompletionDelimiter string
}

// NewTupleParser creates a parser with the default delimiters
func NewTupleParser() *TupleParser {
	return &TupleParser{
		RecordDelimiter:     DefaultRecordDelimiter,
		TupleDelimiter:      DefaultTupleDelimiter,
		CompletionDelimiter: DefaultCompletionDelimiter,
	}
}

// ParseEntities returns every well-formed entity tuple in content, in order.
// Malformed records are logged and skipped.
func (p *TupleParser) ParseEntities(content string) []model.ExtractedEntity {
	entities := []model.ExtractedEntity{}
	content = strings.ReplaceAll(content, p.CompletionDelimiter, "")

	for _, record := range strings.Split(content, p.RecordDelimiter) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		entity, err := p.parseRecord(record)
		if err != nil {
			logger.Warn().Err(err).Str("record", record).Msg("Failed to parse entity tuple")
			continue
		}
		entities = append(entities, entity)
	}
	return entities
}

// parseRecord converts "(entity<||>text<||>label<||>confidence)" into an entity
func (p *TupleParser) parseRecord(record string) (model.ExtractedEntity, error) {
	if err := validateString(record, MaxTupleLength, "tuple string"); err != nil {
		return model.ExtractedEntity{}, err
	}

	record = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(record, "("), ")"))
	parts := strings.Split(record, p.TupleDelimiter)
	if len(parts) < 4 {
		return model.ExtractedEntity{}, fmt.Errorf("entity tuple requires 4 parts, got %d", len(parts))
	}
	if kind := strings.TrimSpace(parts[0]); kind != "entity" {
		return model.ExtractedEntity{}, fmt.Errorf("unknown tuple type: %s", kind)
	}

	text := strings.TrimSpace(parts[1])
	if err := validateString(text, MaxEntityTextLength, "entity text"); err != nil {
		return model.ExtractedEntity{}, err
	}
	label := strings.TrimSpace(parts[2])
	if err := validateString(label, 100, "entity label"); err != nil {
		return model.ExtractedEntity{}, err
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return model.ExtractedEntity{}, fmt.Errorf("invalid confidence: %s", parts[3])
	}

	return model.ExtractedEntity{Text: text, Label: label, Confidence: confidence}, nil
}

func validateString(s string, maxLength int, fieldName string) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if len(s) > maxLength {
		return fmt.Errorf("%s too long: %d characters (max: %d)", fieldName, len(s), maxLength)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s contains invalid UTF-8 characters", fieldName)
	}
	return nil
}
