package delivery

import "encoding/json"

// RenderPush decides what to display for an inbound push payload.
// A missing or unparseable payload is treated as an empty object.
func RenderPush(payload []byte) DisplayAction {
	data := map[string]any{}
	if len(payload) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(payload, &parsed); err == nil && parsed != nil {
			data = parsed
		}
	}

	return DisplayAction{
		Title: stringOr(data, "title", DefaultTitle),
		Options: Options{
			Body:  stringOr(data, "body", DefaultBody),
			Icon:  DefaultIcon,
			Badge: DefaultBadge,
			Tag:   stringOr(data, "tag", ""),
			Data:  data,
		},
	}
}

// HandleClick decides how to react to a notification interaction. The payload
// does not influence the target.
func HandleClick(Notification) ClickAction {
	return ClickAction{Close: true, NavigateTo: TargetRoute}
}

func stringOr(data map[string]any, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
