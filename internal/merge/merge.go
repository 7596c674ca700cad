// Package merge combines the parsed split fragments of one operator into a
// single harmonized tariff record.
package merge

// Fragments merges partial records in input order into one record.
//
// The collision policy is shallow-merge: when a key repeats across
// fragments and both the existing and incoming values are JSON objects,
// their keys are merged recursively with the incoming side winning nested
// conflicts. For any other value combination the incoming value replaces
// the existing one.
//
// The function never mutates its inputs and is deterministic for a given
// fragment order. An empty or nil input yields an empty record.
func Fragments(fragments []map[string]any) map[string]any {
	out := make(map[string]any)
	for _, frag := range fragments {
		for key, incoming := range frag {
			existing, seen := out[key]
			if !seen {
				out[key] = incoming
				continue
			}
			existingObj, eok := existing.(map[string]any)
			incomingObj, iok := incoming.(map[string]any)
			if eok && iok {
				out[key] = mergeObjects(existingObj, incomingObj)
				continue
			}
			out[key] = incoming
		}
	}
	return out
}

// mergeObjects returns a new map holding the union of dst and src,
// recursing where both sides hold objects under the same key.
func mergeObjects(dst, src map[string]any) map[string]any {
	merged := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}
	for k, v := range src {
		if dm, ok := merged[k].(map[string]any); ok {
			if sm, ok := v.(map[string]any); ok {
				merged[k] = mergeObjects(dm, sm)
				continue
			}
		}
		merged[k] = v
	}
	return merged
}
