package models

// Section groups dresses under a name with a list of category tags.
// UserEmail is nil for shared default sections, which are visible to every
// user and not deletable.
type Section struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	UserEmail  *string  `json:"userEmail"`
}
