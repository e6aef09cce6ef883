package guard

import (
	"sort"

	"github.com/promptsentry/promptscan/pkg/scan"
)

// CollectStrings walks v and returns every string leaf it contains, in
// deterministic order: slice elements in index order, map entries in sorted
// key order, prompt messages in turn order. Empty strings and unsupported
// leaf types are skipped.
func CollectStrings(v any) []string {
	var out []string
	collect(v, &out)
	return out
}

func collect(v any, out *[]string) {
	switch t := v.(type) {
	case nil:
	case string:
		if t != "" {
			*out = append(*out, t)
		}
	case []string:
		for _, s := range t {
			collect(s, out)
		}
	case []any:
		for _, e := range t {
			collect(e, out)
		}
	case map[string]string:
		for _, k := range sortedKeys(t) {
			collect(t[k], out)
		}
	case map[string]any:
		for _, k := range sortedKeys(t) {
			collect(t[k], out)
		}
	case scan.Message:
		collect(t.Content, out)
	case *scan.Prompt:
		if t != nil {
			collect(*t, out)
		}
	case scan.Prompt:
		for _, msg := range t.Turns() {
			collect(msg.Content, out)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
