package models

import "time"

// Vote is a viewer's current vote on a post or reply.
type Vote string

const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
	VoteNone Vote = "none"
)

// VoteState is the full tally for one subject as seen by one viewer.
// Score is derived from the counters, never stored independently.
type VoteState struct {
	Upvotes    int  `json:"upvotes"`
	Downvotes  int  `json:"downvotes"`
	ViewerVote Vote `json:"viewer_vote"`
	Score      int  `json:"score"`
}

type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	UserID       int       `json:"user_id"`
	Upvotes      int       `json:"upvotes"`
	Downvotes    int       `json:"downvotes"`
	ViewerVote   Vote      `json:"viewer_vote"`
	BestAnswerID *string   `json:"best_answer_id,omitempty"`
	ReplyCount   int       `json:"reply_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Reply is the flat record as stored and served by the API.
// ParentReplyID is nil for top-level replies.
type Reply struct {
	ID            string     `json:"id"`
	PostID        string     `json:"post_id"`
	ParentReplyID *string    `json:"parent_reply_id,omitempty"`
	Content       string     `json:"content"`
	Author        string     `json:"author"`
	UserID        int        `json:"user_id"`
	Upvotes       int        `json:"upvotes"`
	Downvotes     int        `json:"downvotes"`
	ViewerVote    Vote       `json:"viewer_vote"`
	IsBestAnswer  bool       `json:"is_best_answer"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func (r Reply) Score() int { return r.Upvotes - r.Downvotes }

// Engagement is total vote volume, used by the "controversial" ordering.
func (r Reply) Engagement() int { return r.Upvotes + r.Downvotes }

// ReplyNode is the nested form of a Reply. The parent link is positional:
// a node is a child because it sits in its parent's Children list.
type ReplyNode struct {
	Reply
	Children []*ReplyNode `json:"replies"`
}

// Thread is a post plus its fully shaped reply forest.
type Thread struct {
	Post         Post         `json:"post"`
	Replies      []*ReplyNode `json:"replies"`
	TotalReplies int          `json:"total_replies"`
}
