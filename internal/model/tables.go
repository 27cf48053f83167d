package model

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserReward{},
		&RewardGrant{},
		&Post{},
		&PostTagLink{},
		&PostLike{},
		&PostView{},
		&Comment{},
		&CommentLike{},
	}
}
