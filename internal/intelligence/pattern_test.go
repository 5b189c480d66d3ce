package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/extract"
	"anamnesis/internal/parser"
)

func TestPatternEngineLearnAccumulatesFrequency(t *testing.T) {
	engine := NewPatternEngine(extract.DefaultPatternConfig())
	w, err := parser.NewWrapper("python")
	require.NoError(t, err)

	src := "class Config:\n    _instance = None\n\n    @classmethod\n    def get_instance(cls):\n        return cls._instance\n"
	require.NoError(t, DetectAndLearn(context.Background(), engine, w, "/a.py", []byte(src)))
	require.NoError(t, DetectAndLearn(context.Background(), engine, w, "/b.py", []byte(src)))

	patterns := engine.Patterns()
	require.NotEmpty(t, patterns)

	found := false
	for _, p := range patterns {
		if p.Name == "Config" {
			found = true
			assert.Equal(t, 2, p.Frequency)
			assert.ElementsMatch(t, []string{"/a.py", "/b.py"}, p.FilePaths)
		}
	}
	assert.True(t, found, "expected a learned Config singleton pattern")
}

func TestPatternEngineRecommendMatchesKeywords(t *testing.T) {
	engine := NewPatternEngine(extract.DefaultPatternConfig())
	w, err := parser.NewWrapper("python")
	require.NoError(t, err)
	src := "class UserRepository:\n    def find_by_id(self, id):\n        pass\n\n    def save(self, entity):\n        pass\n\n    def delete(self, id):\n        pass\n"
	require.NoError(t, DetectAndLearn(context.Background(), engine, w, "/repo.py", []byte(src)))

	recs := engine.Recommend("I need a repository for user data access", 5)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0].MatchedKeywords, "repository")
}
