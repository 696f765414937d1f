package revision

import "encoding/json"

// ChangeSet is the sparse changed-field diff stored on a revision:
// field name -> new value. It never holds a full snapshot.
type ChangeSet map[string]string

func (c ChangeSet) MarshalDB() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

func ChangeSetFromDB(raw []byte) (ChangeSet, error) {
	if len(raw) == 0 {
		return ChangeSet{}, nil
	}
	var out ChangeSet
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FieldDelta holds one side-by-side value pair from a comparison. A nil
// side means the field is absent from that revision's diff.
type FieldDelta struct {
	Field string  `json:"field"`
	Left  *string `json:"left"`
	Right *string `json:"right"`
}

// Compare returns the symmetric set of changed-field keys across two
// change sets, with each side's value or nil when absent.
func Compare(left, right ChangeSet) []FieldDelta {
	keys := make(map[string]struct{}, len(left)+len(right))
	for k := range left {
		keys[k] = struct{}{}
	}
	for k := range right {
		keys[k] = struct{}{}
	}

	out := make([]FieldDelta, 0, len(keys))
	for k := range keys {
		delta := FieldDelta{Field: k}
		if v, ok := left[k]; ok {
			value := v
			delta.Left = &value
		}
		if v, ok := right[k]; ok {
			value := v
			delta.Right = &value
		}
		out = append(out, delta)
	}
	sortDeltas(out)
	return out
}

func sortDeltas(deltas []FieldDelta) {
	for i := 1; i < len(deltas); i++ {
		for j := i; j > 0 && deltas[j].Field < deltas[j-1].Field; j-- {
			deltas[j], deltas[j-1] = deltas[j-1], deltas[j]
		}
	}
}
