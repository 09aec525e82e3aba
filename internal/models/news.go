package models

// MaxNewsItems caps the news endpoint's list.
const MaxNewsItems = 5

type NewsItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Time    string `json:"time"` // relative age, e.g. "3 hours ago"
	Source  string `json:"source"`
	URL     string `json:"url"`
}
