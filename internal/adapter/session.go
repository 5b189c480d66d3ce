package adapter

import (
	"fmt"

	"anamnesis/internal/entities"
)

func adaptSessionFromDict(data map[string]any) (any, error) {
	name, err := stringField(data, "name")
	if err != nil {
		return nil, err
	}
	feature, err := stringField(data, "feature")
	if err != nil {
		return nil, err
	}
	files, err := stringSliceField(data, "files")
	if err != nil {
		return nil, err
	}
	tasks, err := stringSliceField(data, "tasks")
	if err != nil {
		return nil, err
	}
	notes, err := stringSliceField(data, "notes")
	if err != nil {
		return nil, err
	}
	return &entities.WorkSession{
		Name:     name,
		Feature:  feature,
		Files:    files,
		Tasks:    tasks,
		Notes:    notes,
		Metadata: mapField(data, "metadata"),
	}, nil
}

func sessionToDict(entity any) (map[string]any, error) {
	s, ok := entity.(*entities.WorkSession)
	if !ok {
		return nil, &TypeCoercionError{Field: "entity", Value: fmt.Sprintf("%T", entity), Reason: "want *entities.WorkSession"}
	}
	out := map[string]any{
		"id":         s.ID,
		"name":       s.Name,
		"feature":    s.Feature,
		"files":      s.Files,
		"tasks":      s.Tasks,
		"notes":      s.Notes,
		"metadata":   s.Metadata,
		"is_active":  s.IsActive(),
		"started_at": s.StartedAt,
	}
	if s.EndedAt != nil {
		out["ended_at"] = *s.EndedAt
	}
	return out, nil
}

func adaptDecisionFromDict(data map[string]any) (any, error) {
	if err := requireFields(KindProjectDecision, data, "decision"); err != nil {
		return nil, err
	}

	decision, err := stringField(data, "decision")
	if err != nil {
		return nil, err
	}
	context, err := stringField(data, "context")
	if err != nil {
		return nil, err
	}
	rationale, err := stringField(data, "rationale")
	if err != nil {
		return nil, err
	}
	sessionID, err := stringField(data, "session_id")
	if err != nil {
		return nil, err
	}
	relatedFiles, err := stringSliceField(data, "related_files")
	if err != nil {
		return nil, err
	}
	tags, err := stringSliceField(data, "tags")
	if err != nil {
		return nil, err
	}
	return &entities.ProjectDecision{
		Decision:     decision,
		Context:      context,
		Rationale:    rationale,
		SessionID:    sessionID,
		RelatedFiles: relatedFiles,
		Tags:         tags,
		Metadata:     mapField(data, "metadata"),
	}, nil
}

func decisionToDict(entity any) (map[string]any, error) {
	d, ok := entity.(*entities.ProjectDecision)
	if !ok {
		return nil, &TypeCoercionError{Field: "entity", Value: fmt.Sprintf("%T", entity), Reason: "want *entities.ProjectDecision"}
	}
	return map[string]any{
		"id":            d.ID,
		"decision":      d.Decision,
		"context":       d.Context,
		"rationale":     d.Rationale,
		"session_id":    d.SessionID,
		"related_files": d.RelatedFiles,
		"tags":          d.Tags,
		"metadata":      d.Metadata,
	}, nil
}
