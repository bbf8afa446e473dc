package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-journalist/app/server/models"
	"daily-journalist/app/server/types"
)

func TestCommentCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	journalist := env.createUser(t, "journalist", models.RoleJournalist, "")
	reader := env.createUser(t, "reader", models.RoleReader, "")

	article := env.createArticle(t, journalist, nil, "talked about", true)
	path := fmt.Sprintf("/api/articles/%d/comments", article.ID)

	// 评论需要认证
	rec := env.request(t, http.MethodPost, path, "", &types.CommentCreateRequest{Text: "anon"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 空内容拒绝
	rec = env.request(t, http.MethodPost, path, env.token(t, reader), &types.CommentCreateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, path, env.token(t, reader), &types.CommentCreateRequest{Text: "well said"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[types.CommentInfoWithID](t, rec)
	assert.Equal(t, "well said", created.Text)
	assert.Equal(t, "reader", created.AuthorName)

	// 列表公开可读
	rec = env.request(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]types.CommentInfoWithID](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "well said", list[0].Text)
}

func TestCommentOnDraftFollowsVisibility(t *testing.T) {
	env := newTestEnv(t)
	journalist := env.createUser(t, "journalist", models.RoleJournalist, "")
	reader := env.createUser(t, "reader", models.RoleReader, "")

	draft := env.createArticle(t, journalist, nil, "draft", false)
	path := fmt.Sprintf("/api/articles/%d/comments", draft.ID)

	// 读者对未审批文章不可见，评论也拿 404
	rec := env.request(t, http.MethodPost, path, env.token(t, reader), &types.CommentCreateRequest{Text: "sneak"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// 作者可以在自己的草稿下评论
	rec = env.request(t, http.MethodPost, path, env.token(t, journalist), &types.CommentCreateRequest{Text: "note to self"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
