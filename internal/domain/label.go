package domain

// Entity is a single typed span extracted from a task's text.
// Indexes are rune offsets into the original text, end exclusive.
type Entity struct {
	Text       string `json:"text"`
	ClassName  string `json:"class_name"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// LabelResult is the structured payload produced by a labeling pass,
// automated or human. It is stored on the task as JSON.
type LabelResult struct {
	Entities    []Entity `json:"entities"`
	EntityCount int      `json:"entity_count"`
	EntityTypes []string `json:"entity_types"`
	ModelUsed   string   `json:"model_used,omitempty"`
}

// NewLabelResult builds a LabelResult from a set of entities, deriving the
// count and the distinct class list.
func NewLabelResult(entities []Entity, modelUsed string) *LabelResult {
	seen := make(map[string]struct{}, len(entities))
	types := make([]string, 0, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.ClassName]; !ok {
			seen[e.ClassName] = struct{}{}
			types = append(types, e.ClassName)
		}
	}

	return &LabelResult{
		Entities:    entities,
		EntityCount: len(entities),
		EntityTypes: types,
		ModelUsed:   modelUsed,
	}
}

// DistinctClasses returns the number of distinct entity classes in the result.
func (r *LabelResult) DistinctClasses() int {
	return len(r.EntityTypes)
}

// Equal reports whether two label results contain the same entities in the
// same order. Model identity is ignored: a human-corrected result is
// considered different only if the spans themselves changed.
func (r *LabelResult) Equal(other *LabelResult) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.Entities) != len(other.Entities) {
		return false
	}
	for i, e := range r.Entities {
		if e != other.Entities[i] {
			return false
		}
	}
	return true
}
