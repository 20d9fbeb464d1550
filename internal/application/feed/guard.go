package feed

import (
	"context"
	"sync"
)

// LocalGuard 进程内的补位互斥，单实例部署或测试时使用
type LocalGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewLocalGuard 创建进程内补位互斥
func NewLocalGuard() *LocalGuard {
	return &LocalGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire 实现 ReplenishGuard
func (g *LocalGuard) TryAcquire(_ context.Context, feedID string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[feedID]; busy {
		return nil, false, nil
	}
	g.inFlight[feedID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, feedID)
			g.mu.Unlock()
		})
	}
	return release, true, nil
}

// keyedMutex 按推荐流串行化会话读写
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
