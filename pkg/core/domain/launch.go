package domain

import "time"

// Launch is a single community submission
type Launch struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	TweetURL    string    `json:"tweetUrl,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submission is the payload accepted by POST /api/launches
type Submission struct {
	TweetURL    string   `json:"tweetUrl,omitempty"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// ListQuery narrows a listing. Limit 0 returns every match.
type ListQuery struct {
	Tag    string
	Search string
	Page   int
	Limit  int
}

// Offset converts Page/Limit into a row offset.
func (q ListQuery) Offset() int {
	if q.Limit < 1 || q.Page < 2 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
