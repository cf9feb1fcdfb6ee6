package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/shared/principal"
)

const (
	maxTitleLength   = 120
	minContentLength = 10
	maxImageLength   = 512
	minCommentLength = 2
	maxCommentLength = 500

	// recentCommentsLimit は全体のコメント一覧で返す最大件数です。
	recentCommentsLimit = 50
)

// PostRepository は投稿といいねの永続化層を抽象化します。
type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	// FindByID はいいね・コメントを含まない投稿を返します。
	FindByID(ctx context.Context, id string) (*entity.Post, error)
	// View は閲覧数を1増やし、いいねしたユーザーとコメントを含む投稿を返します。
	View(ctx context.Context, id string) (*entity.Post, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	// Delete は投稿と、それに付いたいいね・コメントを1つのトランザクションで削除します。
	Delete(ctx context.Context, id string) error
	// ListByAuthor は作成者の投稿を新しい順に返します。excludeID が空でなければその投稿を除きます。
	ListByAuthor(ctx context.Context, authorID, excludeID string) ([]entity.Post, error)
	// ListAll はすべての投稿を新しい順に返します。
	ListAll(ctx context.Context) ([]entity.Post, error)

	// Like は未いいねの場合のみいいねを追加し、件数を1増やします。
	// いいね済みかの判定と更新は1つの操作で行い、いいね済みなら ErrAlreadyLiked を返します。
	Like(ctx context.Context, postID, userID string) (entity.LikeState, error)
	// Unlike はいいねを取り消し、件数を1減らします。いいねしていなければ ErrNotLiked を返します。
	Unlike(ctx context.Context, postID, userID string) (entity.LikeState, error)
}

// CommentRepository はコメントの永続化層を抽象化します。
type CommentRepository interface {
	// Add は投稿にコメントを追加します。投稿が存在しない場合は ErrPostNotFound を返します。
	Add(ctx context.Context, comment *entity.Comment) error
	List(ctx context.Context, postID string) ([]entity.Comment, error)
	// ListRecent は投稿をまたいだコメントを新しい順に最大 limit 件返します。
	ListRecent(ctx context.Context, limit int) ([]entity.Comment, error)
	// FindByID は postID に属するコメントを返します。
	FindByID(ctx context.Context, postID, commentID string) (*entity.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

// CreatePostInput は投稿作成時の入力です。
type CreatePostInput struct {
	Title   string
	Content string
	Image   string
}

type blogUsecase struct {
	posts    PostRepository
	comments CommentRepository
}

// NewBlogUsecase はblogUsecaseの新しいインスタンスを生成します。
func NewBlogUsecase(posts PostRepository, comments CommentRepository) *blogUsecase {
	return &blogUsecase{posts: posts, comments: comments}
}

// CreatePost は authorID を作成者として投稿を作成します。
func (u *blogUsecase) CreatePost(ctx context.Context, authorID string, in CreatePostInput) (*entity.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrValidation.WithDetail("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, ErrValidation.WithDetail(fmt.Sprintf("Title cannot exceed %d characters", maxTitleLength))
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrValidation.WithDetail("Content is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Content)) < minContentLength {
		return nil, ErrValidation.WithDetail(fmt.Sprintf("Content must be at least %d characters", minContentLength))
	}
	image := strings.TrimSpace(in.Image)
	if !validImageRef(image) {
		return nil, ErrValidation.WithDetail("Invalid image reference")
	}

	post := &entity.Post{
		Title:    title,
		Content:  in.Content,
		AuthorID: authorID,
		Image:    image,
	}
	if err := u.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.LikedBy = []string{}
	return post, nil
}

// validImageRef は空、http(s) のURL、または ".." を含まない相対パスのみを許可します。
func validImageRef(ref string) bool {
	if ref == "" {
		return true
	}
	if len(ref) > maxImageLength || strings.ContainsAny(ref, "\\ \t\r\n") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "":
		if u.Host != "" || strings.HasPrefix(ref, "/") {
			return false
		}
		for _, seg := range strings.Split(u.Path, "/") {
			if seg == ".." {
				return false
			}
		}
		return u.Path != ""
	default:
		return false
	}
}

// GetPost は閲覧数を1増やした投稿を、いいねしたユーザーとコメントを含めて返します。
func (u *blogUsecase) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	post, err := u.posts.View(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("view post", err)
	}
	return post, nil
}

// IncrementViews は閲覧数を1増やし、更新後の値を返します。
func (u *blogUsecase) IncrementViews(ctx context.Context, id string) (int64, error) {
	views, err := u.posts.IncrementViews(ctx, id)
	if err != nil {
		return 0, wrapRepoErr("increment views", err)
	}
	return views, nil
}

// DeletePost は投稿を削除します。作成者または管理者のみ実行できます。
func (u *blogUsecase) DeletePost(ctx context.Context, actor principal.Principal, postID string) error {
	post, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		return wrapRepoErr("find post", err)
	}
	if !actor.CanModify(post.AuthorID) {
		return ErrForbidden.WithDetail("Unauthorized to delete this post")
	}
	if err := u.posts.Delete(ctx, postID); err != nil {
		return wrapRepoErr("delete post", err)
	}
	return nil
}

// ListAuthorPosts は作成者の投稿を新しい順に返します。
func (u *blogUsecase) ListAuthorPosts(ctx context.Context, authorID, excludeID string) ([]entity.Post, error) {
	posts, err := u.posts.ListByAuthor(ctx, authorID, excludeID)
	if err != nil {
		return nil, wrapRepoErr("list author posts", err)
	}
	return posts, nil
}

// ListPosts はすべての投稿を新しい順に返します。
func (u *blogUsecase) ListPosts(ctx context.Context) ([]entity.Post, error) {
	posts, err := u.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Like は actorID による投稿へのいいねを追加します。
func (u *blogUsecase) Like(ctx context.Context, actorID, postID string) (entity.LikeState, error) {
	state, err := u.posts.Like(ctx, postID, actorID)
	if err != nil {
		return entity.LikeState{}, wrapRepoErr("like post", err)
	}
	return state, nil
}

// Unlike は actorID によるいいねを取り消します。
func (u *blogUsecase) Unlike(ctx context.Context, actorID, postID string) (entity.LikeState, error) {
	state, err := u.posts.Unlike(ctx, postID, actorID)
	if err != nil {
		return entity.LikeState{}, wrapRepoErr("unlike post", err)
	}
	return state, nil
}

// AddComment は投稿にコメントを追加します。前後の空白を除いた文字数が2〜500でなければなりません。
// 作成日時はサーバー側で設定されます。
func (u *blogUsecase) AddComment(ctx context.Context, actorID, postID, text string) (*entity.Comment, error) {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < minCommentLength {
		return nil, ErrValidation.WithDetail(fmt.Sprintf("Comment must be at least %d characters", minCommentLength))
	}
	if n > maxCommentLength {
		return nil, ErrValidation.WithDetail(fmt.Sprintf("Comment cannot exceed %d characters", maxCommentLength))
	}

	comment := &entity.Comment{PostID: postID, AuthorID: actorID, Text: text}
	if err := u.comments.Add(ctx, comment); err != nil {
		return nil, wrapRepoErr("add comment", err)
	}
	return comment, nil
}

// ListComments は投稿のコメントを古い順に返します。
func (u *blogUsecase) ListComments(ctx context.Context, postID string) ([]entity.Comment, error) {
	comments, err := u.comments.List(ctx, postID)
	if err != nil {
		return nil, wrapRepoErr("list comments", err)
	}
	return comments, nil
}

// ListRecentComments は全投稿の最新コメントを新しい順に返します。
func (u *blogUsecase) ListRecentComments(ctx context.Context) ([]entity.Comment, error) {
	comments, err := u.comments.ListRecent(ctx, recentCommentsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent comments: %w", err)
	}
	return comments, nil
}

// DeleteComment はコメントを削除します。コメントの作成者または管理者のみ実行できます。
// 権限がない場合、コメントは変更されません。
func (u *blogUsecase) DeleteComment(ctx context.Context, actor principal.Principal, postID, commentID string) error {
	if _, err := u.posts.FindByID(ctx, postID); err != nil {
		return wrapRepoErr("find post", err)
	}
	comment, err := u.comments.FindByID(ctx, postID, commentID)
	if err != nil {
		return wrapRepoErr("find comment", err)
	}
	if !actor.CanModify(comment.AuthorID) {
		return ErrForbidden.WithDetail("Unauthorized to delete this comment")
	}
	if err := u.comments.Delete(ctx, commentID); err != nil {
		return wrapRepoErr("delete comment", err)
	}
	return nil
}

func wrapRepoErr(op string, err error) error {
	switch {
	case errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrCommentNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAlreadyLiked),
		errors.Is(err, ErrNotLiked):
		return err
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
