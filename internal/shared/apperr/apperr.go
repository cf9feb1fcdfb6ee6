// Package apperr は全フィーチャーで共有するエラー種別を定義します。
// ユースケースはセンチネルエラーを *Error として宣言し、トランスポート層は
// エラー文字列を見ずにレスポンスへ変換できます。
package apperr

import (
	"errors"
	"fmt"
)

// Kind は外側のレイヤー向けのエラー分類です。
type Kind int

const (
	// Internal はストレージ障害や想定外のエラー
	Internal Kind = iota
	// Validation は入力の形式・長さが不正
	Validation
	// Auth は認証できなかった
	Auth
	// Forbidden は認証済みだが権限がない
	Forbidden
	// NotFound は参照先が存在しない
	NotFound
	// Conflict は既存の状態と衝突する
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Auth:
		return "auth"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error は分類済みのエラーです。
// Code は機械可読な識別子で、Message はクライアントへそのまま返せる文言です。
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// New は指定した種別のセンチネルエラーを生成します。
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is は Kind と Code で比較します。
// WithDetail や Wrap で作ったコピーも元のセンチネルに errors.Is で一致します。
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithDetail はメッセージだけを差し替えたコピーを返します。
func (e *Error) WithDetail(message string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: message, Err: e.Err}
}

// Wrap は原因エラーを付与したコピーを返します。
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// KindOf は err の種別を返します。分類されていないエラーは Internal です。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// As は err のチェーンから最初の *Error を取り出します。
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
