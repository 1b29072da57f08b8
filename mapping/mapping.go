// Package mapping maintains the persisted relation between trigger topics
// and action names.
package mapping

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Store is the narrow persistence contract the table flushes through. Load
// returns the persisted action -> trigger topics relation or nil when none
// exists; Save writes a full snapshot.
type Store interface {
	Load() (map[string][]string, error)
	Save(map[string][]string) error
}

// Defaults is the table written on first run.
func Defaults() map[string][]string {
	return map[string][]string{
		"toggle_listen":        {"button_single"},
		"send_last_transcript": {"button_double"},
		"cycle_llm":            {"button_long"},
	}
}

// defaultOrder fixes the insertion order for the default table so that
// TriggersFor is deterministic on first run.
var defaultOrder = []string{"toggle_listen", "send_last_transcript", "cycle_llm"}

// Table is a many-to-many relation from action names to the set of topics
// that trigger them. Every mutation is flushed to the Store; a failed flush
// is logged and the in-memory table stays authoritative for the session.
type Table struct {
	mu      sync.Mutex
	actions *orderedmap.OrderedMap[string, []string]
	store   Store
	logger  *logrus.Logger
}

// NewTable loads the persisted table from store, falling back to Defaults
// when the store has nothing or fails to load. A nil store keeps the table
// purely in memory.
func NewTable(store Store, logger *logrus.Logger) *Table {
	if logger == nil {
		logger = logrus.New()
	}

	t := &Table{
		actions: orderedmap.New[string, []string](),
		store:   store,
		logger:  logger,
	}
	t.load()
	return t
}

// Add inserts topic into action's trigger set. Adding a topic that is
// already present is a no-op; set semantics, not an error.
func (t *Table) Add(action, topic string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	topics, _ := t.actions.Get(action)
	for _, existing := range topics {
		if existing == topic {
			return
		}
	}
	t.actions.Set(action, append(topics, topic))
	t.flush()
}

// Remove deletes topic from action's trigger set if present; no-op
// otherwise. An action left with an empty set stays in the table and simply
// never fires.
func (t *Table) Remove(action, topic string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	topics, ok := t.actions.Get(action)
	if !ok {
		return
	}
	for i, existing := range topics {
		if existing == topic {
			t.actions.Set(action, append(topics[:i:i], topics[i+1:]...))
			t.flush()
			return
		}
	}
}

// TriggersFor returns every action whose trigger set contains topic, each
// exactly once, in action insertion order.
func (t *Table) TriggersFor(topic string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	for pair := t.actions.Oldest(); pair != nil; pair = pair.Next() {
		for _, existing := range pair.Value {
			if existing == topic {
				out = append(out, pair.Key)
				break
			}
		}
	}
	return out
}

// Snapshot returns a copy of the full relation.
func (t *Table) Snapshot() map[string][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Reload discards the in-memory table and re-reads it from the store,
// falling back to Defaults as on startup.
func (t *Table) Reload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actions = orderedmap.New[string, []string]()
	t.loadLocked()
}

func (t *Table) load() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked()
}

func (t *Table) loadLocked() {
	var persisted map[string][]string
	if t.store != nil {
		var err error
		persisted, err = t.store.Load()
		if err != nil {
			t.logger.WithError(err).Warn("Failed to load mapping table, using defaults")
			persisted = nil
		}
	}

	if persisted == nil {
		defaults := Defaults()
		for _, action := range defaultOrder {
			t.actions.Set(action, defaults[action])
		}
		return
	}

	// Lexical order on load keeps TriggersFor deterministic across runs.
	actions := make([]string, 0, len(persisted))
	for action := range persisted {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		topics := persisted[action]
		set := make([]string, 0, len(topics))
		for _, topic := range topics {
			dup := false
			for _, existing := range set {
				if existing == topic {
					dup = true
					break
				}
			}
			if !dup {
				set = append(set, topic)
			}
		}
		t.actions.Set(action, set)
	}
}

// flush writes a snapshot through the store. Callers hold t.mu.
func (t *Table) flush() {
	if t.store == nil {
		return
	}
	if err := t.store.Save(t.snapshotLocked()); err != nil {
		t.logger.WithError(err).Warn("Failed to persist mapping table")
	}
}

func (t *Table) snapshotLocked() map[string][]string {
	out := make(map[string][]string, t.actions.Len())
	for pair := t.actions.Oldest(); pair != nil; pair = pair.Next() {
		topics := make([]string, len(pair.Value))
		copy(topics, pair.Value)
		out[pair.Key] = topics
	}
	return out
}
