package models

// Reminder is one dated event entry from the reminders file.
type Reminder struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Content ReminderContent `json:"content"`
}

// ReminderContent describes the event and the goods to prepare for it.
type ReminderContent struct {
	Event string   `json:"event"`
	Goods []string `json:"goods"`
}
