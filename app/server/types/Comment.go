package types

import "time"

type CommentInfoWithID struct {
	ID         uint      `json:"id"`
	Article    uint      `json:"article"`
	Author     uint      `json:"author"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommentCreateRequest struct {
	Text string `json:"text"`
}
