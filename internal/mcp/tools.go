package mcp

import (
	"context"
	"fmt"

	"anamnesis/internal/entities"
	"anamnesis/internal/services"
)

// Services bundles every backend service a tool handler may call. It is
// assembled once at process startup (cmd/anamnesis's server subcommand)
// and handed to RegisterAll.
type Services struct {
	Learning     *services.LearningService
	Intelligence *services.IntelligenceService
	Sessions     *services.SessionManager
	Codebase     *services.CodebaseService
	System       *services.SystemService
}

// RegisterAll wires every tool named in spec §6.1's table into r, each
// backed by one of svcs' services. Handlers never return a Go error for
// a backend-level failure — those become success:false payloads per
// spec §7 — a returned error here means the call never reached the
// backend (the circuit breaker already covers backend saturation).
func RegisterAll(r *Registry, svcs Services) {
	objectSchema := func(props map[string]schemaProperty, required ...string) toolSchema {
		return toolSchema{Type: "object", Properties: props, Required: required}
	}
	str := schemaProperty{Type: "string"}
	strDesc := func(d string) schemaProperty { return schemaProperty{Type: "string", Description: d} }
	boolProp := schemaProperty{Type: "boolean"}
	intProp := schemaProperty{Type: "integer"}

	r.Register(Tool{
		Name:        "health_check",
		Description: "Reports whether the backend store and migrations are healthy.",
		Schema:      objectSchema(map[string]schemaProperty{"path": str}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			healthy, checks, issues := svcs.System.HealthCheck(getString(args, "path", "."))
			return map[string]any{"success": true, "healthy": healthy, "checks": checks, "issues": issues}, nil
		},
	})

	r.Register(Tool{
		Name:        "learn_codebase_intelligence",
		Description: "Ingests a codebase: parses every source file, extracts symbols and patterns, and persists the result.",
		Schema: objectSchema(map[string]schemaProperty{
			"path":  strDesc("root directory to learn"),
			"force": boolProp,
		}, "path"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			result := svcs.Learning.LearnFromCodebase(ctx, getString(args, "path", "."), services.LearnOptions{
				Force: getBool(args, "force", false),
			})
			return learningResultPayload(result), nil
		},
	})

	r.Register(Tool{
		Name:        "auto_learn_if_needed",
		Description: "Learns a codebase only if it hasn't already been learned, unless force or skip_learning is set.",
		Schema: objectSchema(map[string]schemaProperty{
			"path":                str,
			"force":               boolProp,
			"skip_learning":       boolProp,
			"include_progress":    boolProp,
			"include_setup_steps": boolProp,
		}, "path"),
		Handler: handleAutoLearnIfNeeded(svcs),
	})

	r.Register(Tool{
		Name:        "get_project_blueprint",
		Description: "Summarizes learning status, entry points and key directories for a project.",
		Schema:      objectSchema(map[string]schemaProperty{"path": str}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			bp, err := svcs.Intelligence.GetProjectBlueprint(getString(args, "path", "."))
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "blueprint": bp}, nil
		},
	})

	r.Register(Tool{
		Name:        "get_semantic_insights",
		Description: "Searches learned concepts by name substring and/or concept type.",
		Schema: objectSchema(map[string]schemaProperty{
			"query":        str,
			"concept_type": strDesc("CLASS, FUNCTION, METHOD, VARIABLE, CONSTANT, INTERFACE, TYPE_ALIAS, ENUM, MODULE, PROPERTY, LAMBDA, OTHER"),
			"limit":        intProp,
		}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			insights, total, err := svcs.Intelligence.GetSemanticInsights(
				getString(args, "query", ""),
				entities.ConceptType(getString(args, "concept_type", "")),
				getInt(args, "limit", 20),
			)
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "insights": insights, "total_matches": total}, nil
		},
	})

	r.Register(Tool{
		Name:        "search_codebase",
		Description: "Searches learned concepts, either semantically (embedding similarity) or by name.",
		Schema: objectSchema(map[string]schemaProperty{
			"query":       strDesc("search text"),
			"search_type": strDesc("\"semantic\" (default) or \"name\""),
			"limit":       intProp,
		}, "query"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			query := getString(args, "query", "")
			limit := getInt(args, "limit", 10)
			if getString(args, "search_type", "semantic") == "name" {
				insights, total, err := svcs.Intelligence.GetSemanticInsights(query, "", limit)
				if err != nil {
					return failure(err), nil
				}
				return map[string]any{"success": true, "results": insights, "total_matches": total}, nil
			}
			results, err := svcs.Intelligence.SearchSemanticallySimilar(ctx, query, limit, "", "")
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "results": results}, nil
		},
	})

	r.Register(Tool{
		Name:        "get_pattern_recommendations",
		Description: "Recommends learned coding patterns that match a described problem.",
		Schema: objectSchema(map[string]schemaProperty{
			"problem_description":   strDesc("what the developer is trying to do"),
			"current_file":          str,
			"include_related_files": boolProp,
		}, "problem_description"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			recs, reasoning, related := svcs.Intelligence.GetPatternRecommendations(
				getString(args, "problem_description", ""),
				getString(args, "current_file", ""),
				getBool(args, "include_related_files", false),
			)
			return map[string]any{
				"success":         true,
				"recommendations": recs,
				"reasoning":       reasoning,
				"related_files":   related,
			}, nil
		},
	})

	r.Register(Tool{
		Name:        "predict_coding_approach",
		Description: "Predicts a recommended coding approach for a described problem, based on learned patterns.",
		Schema: objectSchema(map[string]schemaProperty{
			"problem_description": strDesc("what the developer is trying to do"),
			"context":             strDesc("the file currently being edited, if any"),
		}, "problem_description"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			prediction := svcs.Intelligence.PredictCodingApproach(ctx,
				getString(args, "problem_description", ""),
				getString(args, "context", ""),
			)
			return map[string]any{"success": true, "prediction": prediction}, nil
		},
	})

	r.Register(Tool{
		Name:        "get_developer_profile",
		Description: "Summarizes the developer's learned patterns, optionally with recent session activity.",
		Schema: objectSchema(map[string]schemaProperty{
			"include_recent_activity": boolProp,
			"include_work_context":    boolProp,
		}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			includeActivity := getBool(args, "include_recent_activity", false)
			includeContext := getBool(args, "include_work_context", false)

			var recent []entities.WorkSession
			var active *entities.WorkSession
			if includeActivity {
				if sessions, err := svcs.Sessions.GetRecentSessions(10); err == nil {
					recent = sessions
				}
			}
			if includeContext {
				if sess, err := svcs.Sessions.GetSession(""); err == nil {
					active = sess
				}
			}
			profile := svcs.Intelligence.GetDeveloperProfile(includeActivity, includeContext, recent, active)
			return map[string]any{"success": true, "profile": profile}, nil
		},
	})

	r.Register(Tool{
		Name:        "contribute_insights",
		Description: "Records an externally-contributed insight (bug pattern, optimization, refactor suggestion, etc).",
		Schema: objectSchema(map[string]schemaProperty{
			"insight_type": strDesc("BUG_PATTERN, OPTIMIZATION, REFACTOR_SUGGESTION, ARCHITECTURE_OBSERVATION, BEST_PRACTICE"),
			"content":      str,
			"confidence":   schemaProperty{Type: "number"},
			"source_agent": str,
		}, "insight_type", "content", "source_agent"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			ok, id, message := svcs.Intelligence.ContributeInsight(
				entities.InsightType(getString(args, "insight_type", "")),
				getString(args, "content", ""),
				getFloat(args, "confidence", 0.5),
				getString(args, "source_agent", ""),
				getStringSlice(args, "affected_files"),
			)
			return map[string]any{"success": ok, "insight_id": id, "message": message}, nil
		},
	})

	r.Register(Tool{
		Name:        "get_system_status",
		Description: "Reports backend health, and optionally intelligence metrics and runtime diagnostics.",
		Schema: objectSchema(map[string]schemaProperty{
			"include_metrics":     boolProp,
			"include_diagnostics": boolProp,
		}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			out := svcs.System.GetSystemStatus(getBool(args, "include_metrics", false), getBool(args, "include_diagnostics", false))
			out["success"] = true
			return out, nil
		},
	})

	r.Register(Tool{
		Name:        "get_intelligence_metrics",
		Description: "Reports total learned concepts and patterns, optionally broken down by concept type.",
		Schema:      objectSchema(map[string]schemaProperty{"include_breakdown": boolProp}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			out, err := svcs.System.GetIntelligenceMetrics(getBool(args, "include_breakdown", false))
			if err != nil {
				return failure(err), nil
			}
			out["success"] = true
			return out, nil
		},
	})

	r.Register(Tool{
		Name:        "get_performance_status",
		Description: "Reports current indexing throughput, optionally running a small parse benchmark.",
		Schema:      objectSchema(map[string]schemaProperty{"run_benchmark": boolProp}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			out := svcs.System.GetPerformanceStatus(ctx, getBool(args, "run_benchmark", false))
			out["success"] = true
			return out, nil
		},
	})

	r.Register(Tool{
		Name:        "analyze_codebase",
		Description: "Parses every source file under a path and reports per-file symbols, optionally complexity and a dependency graph.",
		Schema: objectSchema(map[string]schemaProperty{
			"path":                 str,
			"max_files":            intProp,
			"include_complexity":   boolProp,
			"include_dependencies": boolProp,
			"use_cache":            boolProp,
		}, "path"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			analysisResult, err := svcs.Codebase.AnalyzeCodebase(ctx,
				getString(args, "path", "."),
				getInt(args, "max_files", 0),
				getBool(args, "include_complexity", false),
				getBool(args, "include_dependencies", false),
				getBool(args, "use_cache", true),
			)
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "analysis": analysisResult}, nil
		},
	})

	registerSessionTools(r, svcs)
}

// handleAutoLearnIfNeeded composes LearnFromCodebase's own
// already-learned short circuit into the status vocabulary the tool
// reports: "skipped" when the caller opted out, "already_learned" when
// LearnFromCodebase found existing intelligence and didn't re-ingest,
// "learned" when it actually ran the pipeline.
func handleAutoLearnIfNeeded(svcs Services) Handler {
	return func(ctx context.Context, args map[string]any) (map[string]any, error) {
		path := getString(args, "path", ".")

		if getBool(args, "skip_learning", false) {
			return map[string]any{"success": true, "status": "skipped", "action_taken": "none"}, nil
		}

		force := getBool(args, "force", false)
		result := svcs.Learning.LearnFromCodebase(ctx, path, services.LearnOptions{Force: force})

		status := "learned"
		if !force && len(result.Insights) > 0 && result.Insights[0] == "Using existing intelligence" {
			status = "already_learned"
		}

		out := learningResultPayload(result)
		out["status"] = status
		out["action_taken"] = status

		if getBool(args, "include_progress", false) {
			out["insights"] = result.Insights
		} else {
			delete(out, "insights")
		}
		if getBool(args, "include_setup_steps", false) && status != "already_learned" {
			out["setup_steps"] = []string{
				"run `anamnesis init` to create .anamnesis/config.json",
				"run `anamnesis learn` to build the intelligence store",
				"run `anamnesis watch` to keep it current",
			}
		}
		return out, nil
	}
}

func registerSessionTools(r *Registry, svcs Services) {
	str := schemaProperty{Type: "string"}
	intProp := schemaProperty{Type: "integer"}

	r.Register(Tool{
		Name:        "start_session",
		Description: "Starts a new work session and makes it the active one.",
		Schema: toolSchema{Type: "object", Properties: map[string]schemaProperty{
			"name": str, "feature": str,
		}},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			sess, err := svcs.Sessions.StartSession(
				getString(args, "name", ""), getString(args, "feature", ""),
				getStringSlice(args, "files"), getStringSlice(args, "tasks"), getStringSlice(args, "notes"),
				getMap(args, "metadata"),
			)
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "session": sess}, nil
		},
	})

	r.Register(Tool{
		Name:        "end_session",
		Description: "Ends a session (the active one, if session_id is omitted).",
		Schema:      toolSchema{Type: "object", Properties: map[string]schemaProperty{"session_id": str}},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			ended, err := svcs.Sessions.EndSession(getString(args, "session_id", ""))
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "ended": ended}, nil
		},
	})

	r.Register(Tool{
		Name:        "get_session",
		Description: "Fetches a session by id, or the active one if session_id is omitted.",
		Schema:      toolSchema{Type: "object", Properties: map[string]schemaProperty{"session_id": str}},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			sess, err := svcs.Sessions.GetSession(getString(args, "session_id", ""))
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "session": sess}, nil
		},
	})

	r.Register(Tool{
		Name:        "list_sessions",
		Description: "Lists active sessions, or the most recent sessions when active_only is false.",
		Schema: toolSchema{Type: "object", Properties: map[string]schemaProperty{
			"active_only": {Type: "boolean"}, "limit": intProp,
		}},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			var sessions []entities.WorkSession
			var err error
			if getBool(args, "active_only", true) {
				sessions, err = svcs.Sessions.GetActiveSessions()
			} else {
				sessions, err = svcs.Sessions.GetRecentSessions(getInt(args, "limit", 20))
			}
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "sessions": sessions}, nil
		},
	})

	r.Register(Tool{
		Name:        "record_decision",
		Description: "Records a project decision, linked to the active session unless session_id is given.",
		Schema: toolSchema{Type: "object", Properties: map[string]schemaProperty{
			"decision": str, "context": str, "rationale": str, "session_id": str,
		}, Required: []string{"decision"}},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			d, err := svcs.Sessions.RecordDecision(
				getString(args, "decision", ""), getString(args, "context", ""), getString(args, "rationale", ""),
				getString(args, "session_id", ""), getStringSlice(args, "related_files"), getStringSlice(args, "tags"),
				getMap(args, "metadata"),
			)
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "decision": d}, nil
		},
	})

	r.Register(Tool{
		Name:        "get_decisions",
		Description: "Lists decisions for a session, or the most recent decisions overall when session_id is omitted.",
		Schema: toolSchema{Type: "object", Properties: map[string]schemaProperty{
			"session_id": str, "limit": intProp,
		}},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			sessionID := getString(args, "session_id", "")
			var decisions []entities.ProjectDecision
			var err error
			if sessionID != "" {
				decisions, err = svcs.Sessions.GetDecisionsBySession(sessionID)
			} else {
				decisions, err = svcs.Sessions.GetRecentDecisions(getInt(args, "limit", 20))
			}
			if err != nil {
				return failure(err), nil
			}
			return map[string]any{"success": true, "decisions": decisions}, nil
		},
	})
}

func learningResultPayload(result entities.LearningResult) map[string]any {
	if result.Error != "" {
		return map[string]any{"success": false, "error": result.Error}
	}
	return map[string]any{
		"success":          true,
		"concepts_learned": result.ConceptsLearned,
		"patterns_learned": result.PatternsLearned,
		"features_learned": result.FeaturesLearned,
		"insights":         result.Insights,
		"time_elapsed_ms":  result.TimeElapsedMS,
		"blueprint":        result.Blueprint,
	}
}

func failure(err error) map[string]any {
	return map[string]any{"success": false, "error": fmt.Sprintf("%v", err)}
}
