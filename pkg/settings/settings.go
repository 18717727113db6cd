// Package settings holds the user-facing application preferences that travel
// with backups.
package settings

// AppSettings are the user's application preferences.
type AppSettings struct {
	NotificationsEnabled bool `json:"notificationsEnabled"`
	// ReminderLeadDays is how many days before a sub-deadline the
	// notification collaborator should remind the user.
	ReminderLeadDays int `json:"reminderLeadDays"`
	// WidgetProjectID pins one project to the companion widget. Empty means
	// the widget shows the most urgent deadlines across all projects.
	WidgetProjectID string `json:"widgetProjectID,omitempty"`
}

// Default returns the settings used before the user changes anything.
func Default() AppSettings {
	return AppSettings{
		NotificationsEnabled: true,
		ReminderLeadDays:     1,
	}
}

// Normalize clamps out-of-range values.
func (s AppSettings) Normalize() AppSettings {
	if s.ReminderLeadDays < 0 {
		s.ReminderLeadDays = 0
	}
	return s
}
