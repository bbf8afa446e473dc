package types

import "time"

type NewsletterInfoWithID struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      uint      `json:"author"`
	AuthorName  string    `json:"author_name"`
	ArticleIDs  []uint    `json:"article_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewsletterInfoInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ArticleIDs  *[]uint `json:"article_ids"`
}

type NewsletterListResponse struct {
	Limit   *int                   `json:"limit,omitempty"`
	PageMax *int64                 `json:"page_max,omitempty"`
	List    []NewsletterInfoWithID `json:"list"`
}
