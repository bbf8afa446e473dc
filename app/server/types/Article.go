package types

import "time"

type ArticleInfoWithID struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Author        uint      `json:"author"`
	AuthorName    string    `json:"author_name"`
	Publisher     *uint     `json:"publisher"`
	PublisherName string    `json:"publisher_name,omitempty"`
	Approved      bool      `json:"approved"`
	CreatedAt     time.Time `json:"created_at"`
}

type ArticleInfoInput struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Publisher *uint   `json:"publisher"` // null 表示独立发稿
}

type ArticleListResponse struct {
	Limit   *int                `json:"limit,omitempty"`
	PageMax *int64              `json:"page_max,omitempty"`
	List    []ArticleInfoWithID `json:"list"`
}

type ArticleApproveResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}
