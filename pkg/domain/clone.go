package domain

// DeepCopy structurally clones a JSON-like value (maps, slices, primitives).
// The engine relies on this for its non-aliasing guarantee: no context value
// handed to callers, actions or history entries may share memory with the
// live context. Serialization round-trips would give the same isolation but
// at a much higher cost.
func DeepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = DeepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = DeepCopy(item)
		}
		return out
	default:
		// Primitives (string, bool, float64, json.Number, nil) are immutable.
		return v
	}
}

// CopyContext clones a context mapping. A nil context yields an empty map,
// never nil, so callers can index without guarding.
func CopyContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = DeepCopy(v)
	}
	return out
}
