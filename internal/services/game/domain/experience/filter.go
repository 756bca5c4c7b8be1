package experience

// playerVisibleKeys is the allow-list applied to arbitrary content before it
// reaches players. Filtering is allow-list based so newly authored fields
// stay hidden until someone decides they are safe.
var playerVisibleKeys = map[string]bool{
	"name":                true,
	"description":         true,
	"category":            true,
	"discoveredAt":        true,
	"sessionId":           true,
	"locationId":          true,
	"explorationProgress": true,
	"availableActions":    true,
	"ambiguousHints":      true,
	"discoveredElements":  true,
	"narrative":           true,
	"success":             true,
	"timeSpentMinutes":    true,
}

// FilterPlayerVisible strips keys outside the player allow-list from content,
// recursing through nested maps and slices. Scalars pass through unchanged.
func FilterPlayerVisible(content any) any {
	switch value := content.(type) {
	case map[string]any:
		filtered := map[string]any{}
		for key, nested := range value {
			if !playerVisibleKeys[key] {
				continue
			}
			filtered[key] = FilterPlayerVisible(nested)
		}
		return filtered
	case []any:
		filtered := make([]any, 0, len(value))
		for _, nested := range value {
			filtered = append(filtered, FilterPlayerVisible(nested))
		}
		return filtered
	default:
		return content
	}
}
