package gesture

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary maps a normalized notification token to the gesture topic it
// emits. Tokens are matched exactly after lowercasing and trimming.
type Vocabulary map[string]string

// DefaultVocabulary returns the built-in token table.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		"single":        TopicButtonSingle,
		"button_single": TopicButtonSingle,
		"tap":           TopicButtonSingle,
		"double":        TopicButtonDouble,
		"button_double": TopicButtonDouble,
		"dbl":           TopicButtonDouble,
		"long":          TopicButtonLong,
		"button_long":   TopicButtonLong,
		"hold":          TopicButtonLong,
	}
}

// Topics returns every topic this vocabulary can emit, sorted and
// deduplicated. Consumers that subscribe per gesture topic must use this
// rather than the default-vocabulary constants, or profile-defined topics
// would never reach them.
func (v Vocabulary) Topics() []string {
	seen := make(map[string]struct{}, len(v))
	var out []string
	for _, topic := range v {
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// profileDoc is the on-disk vocabulary shape: topic -> token list.
type profileDoc struct {
	Gestures map[string][]string `yaml:"gestures"`
}

// LoadVocabulary reads a YAML gesture profile of the form
//
//	gestures:
//	  button_single: [single, tap]
//	  button_double: [double, dbl]
//
// Tokens are lowercased and trimmed on load so that they compare the same
// way incoming payloads do. A token listed under two topics is an error.
func LoadVocabulary(path string) (Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gesture profile: %w", err)
	}

	var doc profileDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse gesture profile %s: %w", path, err)
	}
	if len(doc.Gestures) == 0 {
		return nil, fmt.Errorf("gesture profile %s defines no gestures", path)
	}

	vocab := make(Vocabulary)
	for topic, tokens := range doc.Gestures {
		for _, token := range tokens {
			token = strings.ToLower(strings.TrimSpace(token))
			if token == "" {
				continue
			}
			if prev, ok := vocab[token]; ok && prev != topic {
				return nil, fmt.Errorf("gesture profile %s: token %q mapped to both %q and %q", path, token, prev, topic)
			}
			vocab[token] = topic
		}
	}

	return vocab, nil
}
