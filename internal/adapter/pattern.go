package adapter

import (
	"fmt"

	"anamnesis/internal/entities"
)

func adaptPatternFromDict(data map[string]any) (any, error) {
	if err := requireFields(KindDeveloperPattern, data, "pattern_type", "name"); err != nil {
		return nil, err
	}

	patternType, err := stringField(data, "pattern_type")
	if err != nil {
		return nil, err
	}
	if err := validateEnum("pattern_type", patternType, enumValues(entities.ValidPatternTypes)); err != nil {
		return nil, err
	}
	name, err := stringField(data, "name")
	if err != nil {
		return nil, err
	}
	examples, err := stringSliceField(data, "examples")
	if err != nil {
		return nil, err
	}
	filePaths, err := stringSliceField(data, "file_paths")
	if err != nil {
		return nil, err
	}
	confidence, err := float64Field(data, "confidence")
	if err != nil {
		return nil, err
	}
	return &entities.DeveloperPattern{
		PatternType: entities.PatternType(patternType),
		Name:        name,
		Examples:    examples,
		FilePaths:   filePaths,
		Confidence:  confidence,
		Frequency:   1,
	}, nil
}

func patternToDict(entity any) (map[string]any, error) {
	p, ok := entity.(*entities.DeveloperPattern)
	if !ok {
		return nil, &TypeCoercionError{Field: "entity", Value: fmt.Sprintf("%T", entity), Reason: "want *entities.DeveloperPattern"}
	}
	return map[string]any{
		"id":           p.ID,
		"pattern_type": string(p.PatternType),
		"name":         p.Name,
		"frequency":    p.Frequency,
		"examples":     p.Examples,
		"file_paths":   p.FilePaths,
		"confidence":   p.Confidence,
	}, nil
}
