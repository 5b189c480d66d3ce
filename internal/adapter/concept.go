package adapter

import (
	"fmt"

	"anamnesis/internal/entities"
)

func adaptConceptFromDict(data map[string]any) (any, error) {
	if err := requireFields(KindSemanticConcept, data, "name", "concept_type", "file_path"); err != nil {
		return nil, err
	}

	name, err := stringField(data, "name")
	if err != nil {
		return nil, err
	}
	conceptType, err := stringField(data, "concept_type")
	if err != nil {
		return nil, err
	}
	if err := validateEnum("concept_type", conceptType, enumValues(entities.ValidConceptTypes)); err != nil {
		return nil, err
	}
	filePath, err := stringField(data, "file_path")
	if err != nil {
		return nil, err
	}
	description, err := stringField(data, "description")
	if err != nil {
		return nil, err
	}
	lineStart, err := intField(data, "line_start")
	if err != nil {
		return nil, err
	}
	lineEnd, err := intField(data, "line_end")
	if err != nil {
		return nil, err
	}
	confidence, err := float64Field(data, "confidence")
	if err != nil {
		return nil, err
	}
	if confidence == 0 {
		if _, present := data["confidence"]; !present {
			confidence = 1.0
		}
	}
	if confidence < 0 || confidence > 1 {
		return nil, &TypeCoercionError{Field: "confidence", Value: fmt.Sprintf("%v", confidence), Reason: "must be in [0, 1]"}
	}

	return &entities.SemanticConcept{
		Name:        name,
		ConceptType: entities.ConceptType(conceptType),
		FilePath:    filePath,
		Description: description,
		LineStart:   lineStart,
		LineEnd:     lineEnd,
		Confidence:  confidence,
		Metadata:    mapField(data, "metadata"),
	}, nil
}

func conceptToDict(entity any) (map[string]any, error) {
	c, ok := entity.(*entities.SemanticConcept)
	if !ok {
		return nil, &TypeCoercionError{Field: "entity", Value: fmt.Sprintf("%T", entity), Reason: "want *entities.SemanticConcept"}
	}
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"concept_type": string(c.ConceptType),
		"file_path":    c.FilePath,
		"description":  c.Description,
		"line_start":   c.LineStart,
		"line_end":     c.LineEnd,
		"confidence":   c.Confidence,
		"metadata":     c.Metadata,
	}, nil
}
