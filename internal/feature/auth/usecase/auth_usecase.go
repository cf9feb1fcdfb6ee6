package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/auth/domain/entity"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/principal"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6
	// maxPasswordBytes はbcryptが扱える最大バイト数です。
	maxPasswordBytes = 72
	maxNameLength    = 50

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ログにのみ残す内部的な失敗理由
var (
	errUnknownEmail     = errors.New("no user with this email")
	errPasswordMismatch = errors.New("password mismatch")
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。
	// 同じメールアドレスが既に存在する場合、ErrDuplicateEmail を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は大文字小文字を区別せずにユーザーを取得します。
	// 存在しない場合、ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDでユーザーを取得します。
	// 存在しない場合、ErrUserNotFound を返します。
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// TokenIssuer はトークンの発行とリフレッシュ用の解析を行います。
type TokenIssuer interface {
	Issue(userID string) (jwtmw.Token, error)
	IssueShortLived(userID string) (jwtmw.Token, error)
	ParseIgnoringExpiry(token string) (string, error)
}

// RegisterInput はユーザー登録の入力です。
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session はログイン・リフレッシュの結果です。
type Session struct {
	Token jwtmw.Token
	User  *entity.User
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	tokens TokenIssuer
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:  users,
		tokens: tokens,
	}
}

// NormalizeEmail はメールアドレスをトリムして小文字化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(in RegisterInput) error {
	switch {
	case in.Email == "":
		return ErrValidation.WithDetail("Email is required")
	case !emailPattern.MatchString(in.Email):
		return ErrValidation.WithDetail("Invalid email format")
	case utf8.RuneCountInString(in.Password) < minPasswordLength:
		return ErrValidation.WithDetail(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	case len(in.Password) > maxPasswordBytes:
		return ErrValidation.WithDetail(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	case in.FirstName == "":
		return ErrValidation.WithDetail("First name is required")
	case utf8.RuneCountInString(in.FirstName) > maxNameLength:
		return ErrValidation.WithDetail(fmt.Sprintf("First name must be at most %d characters", maxNameLength))
	case utf8.RuneCountInString(in.LastName) > maxNameLength:
		return ErrValidation.WithDetail(fmt.Sprintf("Last name must be at most %d characters", maxNameLength))
	}
	return nil
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// 返却するユーザーのパスワードハッシュは空にします。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	// 一意インデックスでも検出されるが、先に確認して明確なエラーを返す
	if _, err := u.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Password = ""
	return user, nil
}

// checkCredentials はメールアドレスとパスワードを検証します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) checkCredentials(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	switch {
	case err != nil:
		return nil, errUnknownEmail
	case compareErr != nil:
		return nil, errPasswordMismatch
	}
	return user, nil
}

// VerifyPassword はメールアドレスとパスワードの組が正しいかを返します。
// ユーザーが存在しない場合も false を返します。
func (u *authUsecase) VerifyPassword(ctx context.Context, email, candidate string) (bool, error) {
	_, err := u.checkCredentials(ctx, email, candidate)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errUnknownEmail), errors.Is(err, errPasswordMismatch):
		return false, nil
	default:
		return false, err
	}
}

// Login はユーザーを認証し、成功時にトークンを発行します。
// ユーザー不在とパスワード不一致はどちらも ErrInvalidCredentials になり、理由はログにのみ残ります。
func (u *authUsecase) Login(ctx context.Context, email, password string, shortLived bool) (*Session, error) {
	user, err := u.checkCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, errUnknownEmail) || errors.Is(err, errPasswordMismatch) {
			return nil, ErrInvalidCredentials.Wrap(err)
		}
		return nil, err
	}

	issue := u.tokens.Issue
	if shortLived {
		issue = u.tokens.IssueShortLived
	}
	token, err := issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return &Session{Token: token, User: user}, nil
}

// Refresh は期限切れでも署名が正しいトークンから新しい通常トークンを発行します。
// トークン発行後にアカウントが削除されていた場合は ErrUserNotFound を返します。
func (u *authUsecase) Refresh(ctx context.Context, token string) (*Session, error) {
	userID, err := u.tokens.ParseIgnoringExpiry(token)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	fresh, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	slog.Debug("token refreshed", "user_id", user.ID)

	user.Password = ""
	return &Session{Token: fresh, User: user}, nil
}

// ResolvePrincipal はユーザーIDを認証済みユーザーに解決します。
// 認証ミドルウェアからリクエストごとに1回呼ばれます。
func (u *authUsecase) ResolvePrincipal(ctx context.Context, userID string) (principal.Principal, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return principal.Principal{}, err
		}
		return principal.Principal{}, fmt.Errorf("failed to resolve principal: %w", err)
	}
	return principal.Principal{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
	}, nil
}
