package todoist

// taskDTO mirrors the Todoist REST v2 task payload (fields we consume)
type taskDTO struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"project_id"`
	SectionID   string   `json:"section_id"`
	ParentID    string   `json:"parent_id"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Order       int      `json:"order"`
	Due         *dueDTO  `json:"due"`
}

type dueDTO struct {
	Date      string `json:"date"`
	String    string `json:"string"`
	Recurring bool   `json:"is_recurring"`
}

// sectionDTO mirrors the Todoist REST v2 section payload
type sectionDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
}

// createTaskDTO is the body for POST /tasks
type createTaskDTO struct {
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	SectionID   string `json:"section_id,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// updateDueDTO is the body for POST /tasks/{id}; an explicit "no date"
// due_string clears the schedule.
type updateDueDTO struct {
	DueDate   string `json:"due_date,omitempty"`
	DueString string `json:"due_string,omitempty"`
}
