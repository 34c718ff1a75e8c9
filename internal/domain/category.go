package domain

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// CategoryNeed pairs a category with its approved-article count over the
// recent window. The supplement planner services the lowest counts first.
type CategoryNeed struct {
	Category
	RecentCount int `json:"recentCount"`
}
