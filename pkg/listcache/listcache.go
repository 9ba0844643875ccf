// Package listcache is the client-side in-memory view of the market post
// collection. A UI session owns exactly one State and advances it by calling
// the transition methods; every transition returns a fresh value, so a failed
// request is handled by simply not applying one.
package listcache

import "farm-market-api/internal/domain"

type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// State 列表页的唯一事实来源
type State struct {
	Status Status
	Posts  []domain.MarketPost
	Err    error
}

func New() State { return State{Status: Idle} }

// FetchStarted 进入 Loading，旧数据保留着给界面垫底
func (s State) FetchStarted() State {
	return State{Status: Loading, Posts: s.Posts}
}

func (s State) FetchSucceeded(posts []domain.MarketPost) State {
	cp := make([]domain.MarketPost, len(posts))
	copy(cp, posts)
	return State{Status: Loaded, Posts: cp}
}

// FetchFailed 保留上一份好数据，界面可以叠个错误条而不是白屏
func (s State) FetchFailed(err error) State {
	return State{Status: Failed, Posts: s.Posts, Err: err}
}

// PostCreated 追加到末尾，不重新拉取
func (s State) PostCreated(p domain.MarketPost) State {
	cp := make([]domain.MarketPost, len(s.Posts), len(s.Posts)+1)
	copy(cp, s.Posts)
	return State{Status: s.Status, Posts: append(cp, p), Err: s.Err}
}

// PostUpdated 按 id 原位替换；找不到（比如和并发删除撞了）就静默丢弃，
// 不做 insert-if-missing
func (s State) PostUpdated(p domain.MarketPost) State {
	cp := make([]domain.MarketPost, len(s.Posts))
	copy(cp, s.Posts)
	for i := range cp {
		if cp[i].ID == p.ID {
			cp[i] = p
			break
		}
	}
	return State{Status: s.Status, Posts: cp, Err: s.Err}
}

// PostDeleted 过滤掉匹配 id
func (s State) PostDeleted(id string) State {
	cp := make([]domain.MarketPost, 0, len(s.Posts))
	for _, p := range s.Posts {
		if p.ID != id {
			cp = append(cp, p)
		}
	}
	return State{Status: s.Status, Posts: cp, Err: s.Err}
}

// MyPosts "我的帖子"视图：每次读都从主列表重算，不单独缓存，
// 主列表一动它立刻跟上
func (s State) MyPosts(ownerID string) []domain.MarketPost {
	out := make([]domain.MarketPost, 0)
	for _, p := range s.Posts {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out
}
