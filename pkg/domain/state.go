package domain

// State is the mutable key-value record threaded through a run. It is owned
// exclusively by the runtime for the duration of one run; steps receive it by
// reference and return patches rather than mutating it.
type State map[string]any

// Clone returns a deep copy of the state. Nested maps and slices are copied
// so observers holding a snapshot cannot reach back into live run state.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	out := make(State, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a new state holding s overlaid with patch: patch keys
// overwrite, unspecified keys persist (right-biased shallow merge).
func (s State) Merge(patch State) State {
	out := make(State, len(s)+len(patch))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}
