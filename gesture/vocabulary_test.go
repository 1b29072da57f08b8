package gesture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadVocabulary(t *testing.T) {
	path := writeProfile(t, `
gestures:
  button_single: [click, " TAP "]
  button_double: [dblclick]
  swipe_up: [up]
`)

	vocab, err := LoadVocabulary(path)

	require.NoError(t, err)
	assert.Equal(t, Vocabulary{
		"click":    TopicButtonSingle,
		"tap":      TopicButtonSingle,
		"dblclick": TopicButtonDouble,
		"up":       "swipe_up",
	}, vocab)
}

func TestVocabulary_Topics(t *testing.T) {
	vocab := Vocabulary{
		"up":   "swipe_up",
		"down": "swipe_down",
		"tap":  TopicButtonSingle,
		"one":  TopicButtonSingle,
	}

	assert.Equal(t, []string{TopicButtonSingle, "swipe_down", "swipe_up"}, vocab.Topics())
	assert.ElementsMatch(t, Topics(), DefaultVocabulary().Topics())
}

func TestLoadVocabulary_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "not yaml",
			content: "{{{",
		},
		{
			name:    "no gestures",
			content: "gestures: {}",
		},
		{
			name: "token mapped twice",
			content: `
gestures:
  button_single: [tap]
  button_double: [tap]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadVocabulary(writeProfile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadVocabulary_MissingFile(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultVocabulary_CoversAllGestureTopics(t *testing.T) {
	vocab := DefaultVocabulary()

	seen := make(map[string]bool)
	for _, topic := range vocab {
		seen[topic] = true
	}

	for _, topic := range Topics() {
		assert.True(t, seen[topic], "no token maps to %s", topic)
	}
}
