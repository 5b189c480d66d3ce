package adapter

import (
	"fmt"

	"anamnesis/internal/entities"
)

func adaptInsightFromDict(data map[string]any) (any, error) {
	if err := requireFields(KindAIInsight, data, "insight_type", "title"); err != nil {
		return nil, err
	}

	insightType, err := stringField(data, "insight_type")
	if err != nil {
		return nil, err
	}
	if err := validateEnum("insight_type", insightType, enumValues(entities.ValidInsightTypes)); err != nil {
		return nil, err
	}
	title, err := stringField(data, "title")
	if err != nil {
		return nil, err
	}
	description, err := stringField(data, "description")
	if err != nil {
		return nil, err
	}
	affectedFiles, err := stringSliceField(data, "affected_files")
	if err != nil {
		return nil, err
	}
	confidence, err := float64Field(data, "confidence")
	if err != nil {
		return nil, err
	}
	severity, err := stringField(data, "severity")
	if err != nil {
		return nil, err
	}
	action, err := stringField(data, "suggested_action")
	if err != nil {
		return nil, err
	}
	return &entities.AIInsight{
		InsightType:     entities.InsightType(insightType),
		Title:           title,
		Description:     description,
		AffectedFiles:   affectedFiles,
		Confidence:      confidence,
		Severity:        severity,
		SuggestedAction: action,
		Metadata:        mapField(data, "metadata"),
	}, nil
}

func insightToDict(entity any) (map[string]any, error) {
	i, ok := entity.(*entities.AIInsight)
	if !ok {
		return nil, &TypeCoercionError{Field: "entity", Value: fmt.Sprintf("%T", entity), Reason: "want *entities.AIInsight"}
	}
	return map[string]any{
		"id":               i.ID,
		"insight_type":     string(i.InsightType),
		"title":            i.Title,
		"description":      i.Description,
		"affected_files":   i.AffectedFiles,
		"confidence":       i.Confidence,
		"severity":         i.Severity,
		"suggested_action": i.SuggestedAction,
		"metadata":         i.Metadata,
	}, nil
}
