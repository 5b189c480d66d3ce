package adapter

import (
	"fmt"

	"anamnesis/internal/entities"
)

func adaptADRFromDict(data map[string]any) (any, error) {
	if err := requireFields(KindArchitecturalDecision, data, "title"); err != nil {
		return nil, err
	}

	title, err := stringField(data, "title")
	if err != nil {
		return nil, err
	}
	context, err := stringField(data, "context")
	if err != nil {
		return nil, err
	}
	decision, err := stringField(data, "decision")
	if err != nil {
		return nil, err
	}
	status, err := stringField(data, "status")
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = string(entities.ADRProposed)
	}
	if err := validateEnum("status", status, enumValues(entities.ValidADRStatuses)); err != nil {
		return nil, err
	}
	consequences, err := stringField(data, "consequences")
	if err != nil {
		return nil, err
	}
	return &entities.ArchitecturalDecision{
		Title:        title,
		Context:      context,
		Decision:     decision,
		Status:       entities.ADRStatus(status),
		Consequences: consequences,
	}, nil
}

func adrToDict(entity any) (map[string]any, error) {
	a, ok := entity.(*entities.ArchitecturalDecision)
	if !ok {
		return nil, &TypeCoercionError{Field: "entity", Value: fmt.Sprintf("%T", entity), Reason: "want *entities.ArchitecturalDecision"}
	}
	return map[string]any{
		"id":           a.ID,
		"title":        a.Title,
		"context":      a.Context,
		"decision":     a.Decision,
		"status":       string(a.Status),
		"consequences": a.Consequences,
	}, nil
}

func adaptFileIntelFromDict(data map[string]any) (any, error) {
	if err := requireFields(KindFileIntelligence, data, "file_path"); err != nil {
		return nil, err
	}

	filePath, err := stringField(data, "file_path")
	if err != nil {
		return nil, err
	}
	return &entities.FileIntelligence{
		FilePath: filePath,
		Metadata: mapField(data, "metadata"),
	}, nil
}

func fileIntelToDict(entity any) (map[string]any, error) {
	f, ok := entity.(*entities.FileIntelligence)
	if !ok {
		return nil, &TypeCoercionError{Field: "entity", Value: fmt.Sprintf("%T", entity), Reason: "want *entities.FileIntelligence"}
	}
	return map[string]any{
		"id":        f.ID,
		"file_path": f.FilePath,
		"metadata":  f.Metadata,
	}, nil
}
