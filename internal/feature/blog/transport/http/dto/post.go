// Package dto はblogフィーチャーのエンティティをAPIレスポンスへ変換します。
package dto

import (
	"blog_backend/internal/api"
	"blog_backend/internal/feature/blog/domain/entity"
)

// FromPost は投稿をレスポンスに変換します。コメントは読み込まれている場合のみ含めます。
func FromPost(p *entity.Post) api.PostResponse {
	res := api.PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		Image:     p.Image,
		Views:     p.Views,
		Likes:     p.Likes,
		LikedBy:   p.LikedBy,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if res.LikedBy == nil {
		res.LikedBy = []string{}
	}
	if p.Comments != nil {
		res.Comments = FromComments(p.Comments)
	}
	return res
}

func FromPosts(posts []entity.Post) []api.PostResponse {
	res := make([]api.PostResponse, 0, len(posts))
	for i := range posts {
		res = append(res, FromPost(&posts[i]))
	}
	return res
}

func FromComment(c *entity.Comment) api.CommentResponse {
	return api.CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func FromComments(comments []entity.Comment) []api.CommentResponse {
	res := make([]api.CommentResponse, 0, len(comments))
	for i := range comments {
		res = append(res, FromComment(&comments[i]))
	}
	return res
}

// FromLikeState は like/unlike 後の状態をレスポンスに変換します。
func FromLikeState(s entity.LikeState) api.LikeResponse {
	likedBy := s.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return api.LikeResponse{Likes: s.Likes, LikedBy: likedBy}
}
