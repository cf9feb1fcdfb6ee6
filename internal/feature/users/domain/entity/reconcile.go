package entity

// ReconcileReport はグラフ整合性チェックで修正した件数です。
type ReconcileReport struct {
	SelfFollows       int64
	OrphanFollows     int64
	OrphanLikes       int64
	OrphanComments    int64
	FollowersFixed    int64
	FollowingFixed    int64
	LikeCountersFixed int64
}

// Changed は何らかの修正が行われたかを返します。
func (r ReconcileReport) Changed() bool {
	return r.SelfFollows+r.OrphanFollows+r.OrphanLikes+r.OrphanComments+
		r.FollowersFixed+r.FollowingFixed+r.LikeCountersFixed > 0
}
