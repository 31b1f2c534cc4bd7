package switchboard

import (
	"context"
	"sync"
)

// Topics keys broadcast groups by topic. Publishing on a topic only takes
// a read lock, so publishers never wait on each other; attaching a phone
// takes the write lock.
//
// Topics are created on first attach and never removed. The zero value is
// ready to use.
type Topics[C any, K comparable] struct {
	lk     sync.RWMutex
	groups map[K]*Group[C]
	opts   []Option
}

// NewTopics creates a registry. opts configure every group it creates.
func NewTopics[C any, K comparable](opts ...Option) (*Topics[C, K], error) {
	// validate now rather than on first attach.
	if _, err := newConfig(opts); err != nil {
		return nil, err
	}
	return &Topics[C, K]{
		groups: make(map[K]*Group[C]),
		opts:   opts,
	}, nil
}

// Attach subscribes ph to topic.
func (t *Topics[C, K]) Attach(topic K, ph *Phone[C]) {
	t.lk.Lock()
	defer t.lk.Unlock()

	if t.groups == nil {
		t.groups = make(map[K]*Group[C])
	}
	group, ok := t.groups[topic]
	if !ok {
		group = t.newGroup()
		t.groups[topic] = group
	}
	group.Attach(ph)
}

func (t *Topics[C, K]) newGroup() *Group[C] {
	group := &Group[C]{}
	cfg, err := newConfig(t.opts)
	if err != nil {
		// options were validated by NewTopics.
		group.defaults()
		return group
	}
	group.configure(cfg)
	return group
}

func (t *Topics[C, K]) group(topic K) (*Group[C], bool) {
	t.lk.RLock()
	defer t.lk.RUnlock()
	group, ok := t.groups[topic]
	return group, ok
}

// Len is the number of known topics.
func (t *Topics[C, K]) Len() int {
	t.lk.RLock()
	defer t.lk.RUnlock()
	return len(t.groups)
}

// Listeners is the number of phones attached to topic.
func (t *Topics[C, K]) Listeners(topic K) int {
	group, ok := t.group(topic)
	if !ok {
		return 0
	}
	return group.Len()
}

// CallTopic broadcasts a call to the phones attached to topic. An unknown
// topic has no listener: the result is empty.
func CallTopic[C any, K comparable, P, R any](ctx context.Context, t *Topics[C, K], topic K, b Binding[C, P, R], params P) []R {
	group, ok := t.group(topic)
	if !ok {
		return []R{}
	}
	return Broadcast(ctx, group, b, params)
}

// CallTopicNoResponse broadcasts a call to the phones attached to topic
// without waiting for them. It does nothing on an unknown topic.
func CallTopicNoResponse[C any, K comparable, P, R any](ctx context.Context, t *Topics[C, K], topic K, b Binding[C, P, R], params P) {
	group, ok := t.group(topic)
	if !ok {
		return
	}
	BroadcastNoResponse(ctx, group, b, params)
}
