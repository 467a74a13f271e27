package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastOrderUnix atomic.Int64 // unix seconds
	lastOrderOK   atomic.Bool
	orders        atomic.Uint64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// TouchOrder отмечает очередной ордер и его исход.
func (s *State) TouchOrder(t time.Time, ok bool) {
	s.lastOrderUnix.Store(t.Unix())
	s.lastOrderOK.Store(ok)
	s.orders.Add(1)
}

func (s *State) LastOrder() time.Time {
	u := s.lastOrderUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) LastOrderOK() bool { return s.lastOrderOK.Load() }
func (s *State) Orders() uint64    { return s.orders.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
