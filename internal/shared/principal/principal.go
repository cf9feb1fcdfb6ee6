// Package principal はリクエストに紐づく認証済みユーザーを表します。
package principal

// Principal はパスワードなどの機密情報を含まない認証済みユーザーのビューです。
type Principal struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	IsAdmin   bool
}

// CanModify は ownerID が所有するリソースを変更できるかを返します。
// 所有者本人または管理者のみ許可されます。
func (p Principal) CanModify(ownerID string) bool {
	return p.IsAdmin || (p.ID != "" && p.ID == ownerID)
}
