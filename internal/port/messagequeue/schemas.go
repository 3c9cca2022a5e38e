package messagequeue

// TaskEventPayload is the schema shared by all tasks.* messages. Recipients
// is the set of employees the notification dispatcher should fan out to;
// the acting employee is never included.
type TaskEventPayload struct {
	TaskID     string   `json:"task_id"`
	SeriesID   string   `json:"series_id,omitempty"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	ActorID    string   `json:"actor_id"`
	OwnerID    string   `json:"owner_id"`
	Recipients []string `json:"recipients,omitempty"`
}
