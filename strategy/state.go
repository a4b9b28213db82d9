package strategy

// State is the agent-owned mutable key/value context handed to each strategy
// invocation. It is exclusively mutated by the agent loop / strategy pair and
// never shared across concurrent tasks, so no internal locking is needed.
type State struct {
	values map[string]any
}

// NewState constructs an empty State.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value under key if it is a string.
func (s *State) GetString(key string) (string, bool) {
	v, ok := s.values[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Set stores value under key, replacing any previous value.
func (s *State) Set(key string, value any) {
	s.values[key] = value
}

// Delete removes the value stored under key.
func (s *State) Delete(key string) {
	delete(s.values, key)
}

// Len returns the number of stored keys.
func (s *State) Len() int { return len(s.values) }

// Merge applies a key/value delta, replacing existing keys.
func (s *State) Merge(delta map[string]any) {
	for k, v := range delta {
		s.values[k] = v
	}
}

// Snapshot returns a shallow copy of the stored values. Mutating the returned
// map does not affect the State.
func (s *State) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
