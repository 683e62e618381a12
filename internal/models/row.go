package models

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Row is one analysis finding. The cell set varies by feature, so rows keep
// the server's loose JSON shape keyed by column name. Cell values are strings
// except diff columns, which hold []DiffSpan.
type Row map[string]any

// String returns the cell value for column as a string, or "" when the cell
// is absent or not textual.
func (r Row) String(column string) string {
	s, _ := r[column].(string)
	return s
}

// DiffSpans decodes the cell value for column as a diff-span list. Returns
// nil when the cell is absent or not span-shaped.
func (r Row) DiffSpans(column string) []DiffSpan {
	raw, ok := r[column].([]any)
	if !ok {
		return nil
	}
	spans := make([]DiffSpan, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		text, _ := m["text"].(string)
		changed, _ := m["changed"].(bool)
		spans = append(spans, DiffSpan{Text: text, Changed: changed})
	}
	return spans
}

// DiffSpan is one fragment of a revised sentence, marked changed when it
// differs from the original.
type DiffSpan struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

// RowAction is the user's decision for one result row: whether the finding
// should be acted on, and who is responsible for it.
type RowAction struct {
	Replace   bool `json:"is_ganti"`
	PICUserID *int `json:"pic_user_id"`
}

// ActionMap maps a 1-based row position to its action. RowIds are positional
// within one rendered table, not stable database keys.
type ActionMap map[int]RowAction

// MarshalJSON encodes the map with string keys, matching the wire format the
// server expects ({"1": {...}, "2": {...}}).
func (m ActionMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]RowAction, len(m))
	for id, action := range m {
		out[strconv.Itoa(id)] = action
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts string-keyed action objects; non-numeric keys are
// dropped rather than failing the whole decode.
func (m *ActionMap) UnmarshalJSON(data []byte) error {
	var raw map[string]RowAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ActionMap, len(raw))
	for key, action := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[id] = action
	}
	*m = out
	return nil
}

// RowIDs returns the map's keys in ascending order.
func (m ActionMap) RowIDs() []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
