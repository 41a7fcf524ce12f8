package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// numberFromMap reads the first present numeric value along an ordered alias
// chain. Source records are schema-loose, so every read goes through an
// explicit list of known spellings; anything non-numeric coerces to 0.
func numberFromMap(data map[string]any, keys ...string) float64 {
	if data == nil {
		return 0
	}
	for _, key := range keys {
		raw, ok := data[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case json.Number:
			f, err := v.Float64()
			if err == nil {
				return f
			}
		case string:
			var parsed float64
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%f", &parsed); err == nil {
				return parsed
			}
		}
	}
	return 0
}

func parseJSONMap(input []byte) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	var result map[string]any
	if err := json.Unmarshal(input, &result); err != nil || result == nil {
		return map[string]any{}
	}
	return result
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

type counter struct {
	counts map[string]int
	labels map[string]string
	order  []string
}

func newCounter() *counter {
	return &counter{
		counts: map[string]int{},
		labels: map[string]string{},
	}
}

// add counts case-insensitively while preserving the first-seen spelling and
// the insertion order for tie-breaking.
func (c *counter) add(name string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	key := strings.ToLower(trimmed)
	if _, seen := c.counts[key]; !seen {
		c.labels[key] = trimmed
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to n items, highest count first, ties by insertion order.
func (c *counter) top(n int) []TopItem {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	items := make([]TopItem, 0, len(keys))
	for _, key := range keys {
		items = append(items, TopItem{Name: c.labels[key], Count: c.counts[key]})
	}
	return items
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func firstN(days []string, n int) []string {
	if len(days) <= n {
		return days
	}
	return days[:n]
}
