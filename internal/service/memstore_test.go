package service

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"glaminator/internal/model"
	"glaminator/internal/repository"
)

type rewardKey struct {
	userID uuid.UUID
	t      model.RewardType
}

type pairKey struct {
	a, b uuid.UUID
}

type memState struct {
	users        map[uuid.UUID]model.User
	rewards      map[rewardKey]int64
	grants       map[uuid.UUID]model.RewardGrant
	posts        map[uuid.UUID]model.Post
	postLikes    map[pairKey]bool
	postViews    map[pairKey]bool
	comments     map[uuid.UUID]model.Comment
	commentLikes map[pairKey]bool
}

func (s memState) clone() memState {
	return memState{
		users:        maps.Clone(s.users),
		rewards:      maps.Clone(s.rewards),
		grants:       maps.Clone(s.grants),
		posts:        maps.Clone(s.posts),
		postLikes:    maps.Clone(s.postLikes),
		postViews:    maps.Clone(s.postViews),
		comments:     maps.Clone(s.comments),
		commentLikes: maps.Clone(s.commentLikes),
	}
}

// memStore is an in-memory store whose statements are atomic and whose
// transactions are serialized and rolled back on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState

	// errs queues failures returned by the named operation, one per call.
	errs  map[string][]error
	calls map[string]int

	repos *repository.Repositories
}

func newMemStore() *memStore {
	m := &memStore{
		st: memState{
			users:        map[uuid.UUID]model.User{},
			rewards:      map[rewardKey]int64{},
			grants:       map[uuid.UUID]model.RewardGrant{},
			posts:        map[uuid.UUID]model.Post{},
			postLikes:    map[pairKey]bool{},
			postViews:    map[pairKey]bool{},
			comments:     map[uuid.UUID]model.Comment{},
			commentLikes: map[pairKey]bool{},
		},
		errs:  map[string][]error{},
		calls: map[string]int{},
	}
	m.repos = &repository.Repositories{
		Users:    &memUsers{m},
		Rewards:  &memRewards{m},
		Posts:    &memPosts{m},
		Comments: &memComments{m},
	}
	return m
}

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(ctx, m.repos); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) failNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op] = append(m.errs[op], errs...)
}

// begin locks the state, counts the call and pops a queued failure.
func (m *memStore) begin(op string) error {
	m.mu.Lock()
	m.calls[op]++
	if q := m.errs[op]; len(q) > 0 {
		m.errs[op] = q[1:]
		m.mu.Unlock()
		return q[0]
	}
	return nil
}

func (m *memStore) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memStore) addUser(username string) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := model.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	m.st.users[u.ID] = u
	return u
}

func (m *memStore) setBalance(userID uuid.UUID, t model.RewardType, qty int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.rewards[rewardKey{userID, t}] = qty
}

func (m *memStore) balance(userID uuid.UUID, t model.RewardType) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.rewards[rewardKey{userID, t}]
}

func (m *memStore) addPost(authorID uuid.UUID, timestamp int64, tags ...model.PostTag) model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.Post{ID: uuid.New(), UserID: authorID, Title: "t", Content: "c", Timestamp: timestamp}
	for _, t := range tags {
		p.Tags = append(p.Tags, model.PostTagLink{PostID: p.ID, Tag: t})
	}
	m.st.posts[p.ID] = p
	return p
}

// hydrate attaches likes and views the way the GORM preloads do. Callers
// hold m.mu.
func (m *memStore) hydrate(p model.Post) model.Post {
	p.Likes, p.Views = nil, nil
	for k := range m.st.postLikes {
		if k.a == p.ID {
			p.Likes = append(p.Likes, model.PostLike{PostID: p.ID, UserID: k.b})
		}
	}
	for k := range m.st.postViews {
		if k.a == p.ID {
			p.Views = append(p.Views, model.PostView{PostID: p.ID, UserID: k.b})
		}
	}
	return p
}

type memUsers struct{ m *memStore }

func (r *memUsers) Create(_ context.Context, user *model.User) error {
	if err := r.m.begin("users.Create"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	for _, u := range r.m.st.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.m.st.users[user.ID] = *user
	return nil
}

func (r *memUsers) Update(_ context.Context, user *model.User) error {
	if err := r.m.begin("users.Update"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	r.m.st.users[user.ID] = *user
	return nil
}

func (r *memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if err := r.m.begin("users.FindByID"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	u, ok := r.m.st.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for k, q := range r.m.st.rewards {
		if k.userID == id {
			u.Rewards = append(u.Rewards, model.UserReward{UserID: id, Type: k.t, Quantity: q})
		}
	}
	return &u, nil
}

func (r *memUsers) FindBy(_ context.Context, field, value string) (*model.User, error) {
	if err := r.m.begin("users.FindBy"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	for _, u := range r.m.st.users {
		if (field == repository.FieldEmail && u.Email == value) ||
			(field == repository.FieldUsername && u.Username == value) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsers) Upsert(_ context.Context, user *model.User) (bool, error) {
	if err := r.m.begin("users.Upsert"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	_, exists := r.m.st.users[user.ID]
	r.m.st.users[user.ID] = *user
	return !exists, nil
}

func (r *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.m.begin("users.Delete"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	delete(r.m.st.users, id)
	return nil
}

type memRewards struct{ m *memStore }

func (r *memRewards) FindByUser(_ context.Context, userID uuid.UUID) ([]model.UserReward, error) {
	if err := r.m.begin("rewards.FindByUser"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	var out []model.UserReward
	for k, q := range r.m.st.rewards {
		if k.userID == userID {
			out = append(out, model.UserReward{UserID: userID, Type: k.t, Quantity: q})
		}
	}
	return out, nil
}

func (r *memRewards) Increment(_ context.Context, userID uuid.UUID, t model.RewardType, qty int64) error {
	if err := r.m.begin("rewards.Increment"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	r.m.st.rewards[rewardKey{userID, t}] += qty
	return nil
}

func (r *memRewards) Decrement(_ context.Context, userID uuid.UUID, t model.RewardType, qty int64) (bool, error) {
	if err := r.m.begin("rewards.Decrement"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	k := rewardKey{userID, t}
	cur, ok := r.m.st.rewards[k]
	if !ok || cur < qty {
		return false, nil
	}
	r.m.st.rewards[k] = cur - qty
	return true, nil
}

func (r *memRewards) SetBalance(_ context.Context, userID uuid.UUID, t model.RewardType, qty int64) error {
	if err := r.m.begin("rewards.SetBalance"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	r.m.st.rewards[rewardKey{userID, t}] = qty
	return nil
}

func (r *memRewards) CreateGrant(_ context.Context, grant *model.RewardGrant) (bool, error) {
	if err := r.m.begin("rewards.CreateGrant"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	if _, ok := r.m.st.grants[grant.ID]; ok {
		return false, nil
	}
	grant.CreatedAt = time.Now()
	r.m.st.grants[grant.ID] = *grant
	return true, nil
}

func (r *memRewards) ListGrants(_ context.Context, userID uuid.UUID, limit int) ([]model.RewardGrant, error) {
	if err := r.m.begin("rewards.ListGrants"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	var out []model.RewardGrant
	for _, g := range r.m.st.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRewards) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	if err := r.m.begin("rewards.DeleteByUser"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	for k := range r.m.st.rewards {
		if k.userID == userID {
			delete(r.m.st.rewards, k)
		}
	}
	for id, g := range r.m.st.grants {
		if g.UserID == userID {
			delete(r.m.st.grants, id)
		}
	}
	return nil
}

type memPosts struct{ m *memStore }

func (r *memPosts) Create(_ context.Context, post *model.Post) error {
	if err := r.m.begin("posts.Create"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	if post.Timestamp == 0 {
		post.Timestamp = time.Now().UnixMilli()
	}
	r.m.st.posts[post.ID] = *post
	return nil
}

func (r *memPosts) Update(_ context.Context, post *model.Post) error {
	if err := r.m.begin("posts.Update"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	r.m.st.posts[post.ID] = *post
	return nil
}

func (r *memPosts) Upsert(_ context.Context, post *model.Post) (bool, error) {
	if err := r.m.begin("posts.Upsert"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	_, exists := r.m.st.posts[post.ID]
	r.m.st.posts[post.ID] = *post
	return !exists, nil
}

func (r *memPosts) FindByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	if err := r.m.begin("posts.FindByID"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	p, ok := r.m.st.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p = r.m.hydrate(p)
	return &p, nil
}

func (r *memPosts) List(_ context.Context, filter repository.PostFilter) ([]model.Post, error) {
	if err := r.m.begin("posts.List"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	var out []model.Post
	for _, p := range r.m.st.posts {
		if filter.AuthorID != uuid.Nil && p.UserID != filter.AuthorID {
			continue
		}
		if filter.UnseenBy != uuid.Nil && r.m.st.postViews[pairKey{p.ID, filter.UnseenBy}] {
			continue
		}
		tags := p.TagNames()
		matches := true
		for _, want := range filter.AllTags {
			if !slices.Contains(tags, want) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, r.m.hydrate(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (r *memPosts) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.m.begin("posts.Delete"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	r.m.deletePost(id)
	return nil
}

// deletePost cascades; callers hold m.mu.
func (m *memStore) deletePost(id uuid.UUID) {
	for cid, c := range m.st.comments {
		if c.PostID == id {
			for k := range m.st.commentLikes {
				if k.a == cid {
					delete(m.st.commentLikes, k)
				}
			}
			delete(m.st.comments, cid)
		}
	}
	for k := range m.st.postLikes {
		if k.a == id {
			delete(m.st.postLikes, k)
		}
	}
	for k := range m.st.postViews {
		if k.a == id {
			delete(m.st.postViews, k)
		}
	}
	delete(m.st.posts, id)
}

func (r *memPosts) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	if err := r.m.begin("posts.DeleteByUser"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	for id, p := range r.m.st.posts {
		if p.UserID == userID {
			r.m.deletePost(id)
		}
	}
	return nil
}

func (r *memPosts) AddLike(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	if err := r.m.begin("posts.AddLike"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	k := pairKey{postID, userID}
	if r.m.st.postLikes[k] {
		return false, nil
	}
	r.m.st.postLikes[k] = true
	return true, nil
}

func (r *memPosts) RemoveLike(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	if err := r.m.begin("posts.RemoveLike"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	k := pairKey{postID, userID}
	existed := r.m.st.postLikes[k]
	delete(r.m.st.postLikes, k)
	return existed, nil
}

func (r *memPosts) HasLike(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	if err := r.m.begin("posts.HasLike"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	return r.m.st.postLikes[pairKey{postID, userID}], nil
}

func (r *memPosts) MarkSeen(_ context.Context, postID, userID uuid.UUID) error {
	if err := r.m.begin("posts.MarkSeen"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	r.m.st.postViews[pairKey{postID, userID}] = true
	return nil
}

func (r *memPosts) RemoveUserActivity(_ context.Context, userID uuid.UUID) error {
	if err := r.m.begin("posts.RemoveUserActivity"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	for k := range r.m.st.postLikes {
		if k.b == userID {
			delete(r.m.st.postLikes, k)
		}
	}
	for k := range r.m.st.postViews {
		if k.b == userID {
			delete(r.m.st.postViews, k)
		}
	}
	return nil
}

type memComments struct{ m *memStore }

func (r *memComments) Create(_ context.Context, comment *model.Comment) error {
	if err := r.m.begin("comments.Create"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	if comment.Timestamp == 0 {
		comment.Timestamp = time.Now().UnixNano()
	}
	r.m.st.comments[comment.ID] = *comment
	return nil
}

func (r *memComments) Update(_ context.Context, comment *model.Comment) error {
	if err := r.m.begin("comments.Update"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	r.m.st.comments[comment.ID] = *comment
	return nil
}

func (r *memComments) FindByID(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	if err := r.m.begin("comments.FindByID"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	c, ok := r.m.st.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.Likes = nil
	for k := range r.m.st.commentLikes {
		if k.a == id {
			c.Likes = append(c.Likes, model.CommentLike{CommentID: id, UserID: k.b})
		}
	}
	return &c, nil
}

func (r *memComments) ListByPost(_ context.Context, postID uuid.UUID) ([]model.Comment, error) {
	if err := r.m.begin("comments.ListByPost"); err != nil {
		return nil, err
	}
	defer r.m.mu.Unlock()
	var out []model.Comment
	for _, c := range r.m.st.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (r *memComments) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.m.begin("comments.Delete"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	for k := range r.m.st.commentLikes {
		if k.a == id {
			delete(r.m.st.commentLikes, k)
		}
	}
	delete(r.m.st.comments, id)
	return nil
}

func (r *memComments) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	if err := r.m.begin("comments.DeleteByUser"); err != nil {
		return err
	}
	defer r.m.mu.Unlock()
	for id, c := range r.m.st.comments {
		if c.UserID == userID {
			delete(r.m.st.comments, id)
			for k := range r.m.st.commentLikes {
				if k.a == id {
					delete(r.m.st.commentLikes, k)
				}
			}
		}
	}
	for k := range r.m.st.commentLikes {
		if k.b == userID {
			delete(r.m.st.commentLikes, k)
		}
	}
	return nil
}

func (r *memComments) AddLike(_ context.Context, commentID, userID uuid.UUID) (bool, error) {
	if err := r.m.begin("comments.AddLike"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	k := pairKey{commentID, userID}
	if r.m.st.commentLikes[k] {
		return false, nil
	}
	r.m.st.commentLikes[k] = true
	return true, nil
}

func (r *memComments) RemoveLike(_ context.Context, commentID, userID uuid.UUID) (bool, error) {
	if err := r.m.begin("comments.RemoveLike"); err != nil {
		return false, err
	}
	defer r.m.mu.Unlock()
	k := pairKey{commentID, userID}
	existed := r.m.st.commentLikes[k]
	delete(r.m.st.commentLikes, k)
	return existed, nil
}
