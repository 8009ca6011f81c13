package delivery

// Fallbacks used when a push payload omits fields.
const (
	DefaultTitle = "Task Reminder"
	DefaultBody  = "You have a task reminder"
	DefaultIcon  = "/icon-192x192.png"
	DefaultBadge = "/icon-192x192.png"

	// TargetRoute is the view opened when a notification is clicked.
	TargetRoute = "/tasks"
)

// Options are the display options of a notification.
type Options struct {
	Body  string         `json:"body"`
	Icon  string         `json:"icon"`
	Badge string         `json:"badge"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data"`
}

// DisplayAction describes the notification to show for a push event.
type DisplayAction struct {
	Title   string  `json:"title"`
	Options Options `json:"options"`
}

// Notification identifies a displayed notification in an interaction event.
type Notification struct {
	Tag  string         `json:"tag,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// ClickAction describes how to react to a notification interaction.
type ClickAction struct {
	Close      bool
	NavigateTo string
}
