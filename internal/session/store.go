// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/valyala/fastrand"
)

// In-memory session store. Recomputations are single-flight per session in
// the sense that only the most recently started one may commit; results of
// superseded ones are discarded with ErrSuperseded.
type Store struct {
	mu     sync.RWMutex
	states map[string]*State
	latest map[string]uint64
	next   uint64
}

func NewStore() *Store {
	return &Store{
		states: make(map[string]*State),
		latest: make(map[string]uint64),
	}
}

// Returns a fresh session identifier
func (s *Store) NewID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for {
		id := fmt.Sprintf("%08x", fastrand.Uint32())
		if _, taken := s.states[id]; !taken {
			return id
		}
	}
}

// Hands out a generation ticket for a recomputation of session id.
// Any earlier ticket for id is invalidated
func (s *Store) Begin(id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[id]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.issue(id), nil
}

// caller holds s.mu
func (s *Store) issue(id string) uint64 {
	s.next++
	s.latest[id] = s.next
	return s.next
}

// Stores st if ticket is still the latest for its session, and the session
// has not been deleted meanwhile
func (s *Store) Commit(st *State, ticket uint64) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[st.ID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, st.ID)
	}
	if s.latest[st.ID] != ticket {
		return nil, fmt.Errorf("session %s generation %d: %w", st.ID, ticket, ErrSuperseded)
	}
	return s.store(st, ticket), nil
}

// caller holds s.mu
func (s *Store) store(st *State, ticket uint64) *State {
	c := *st
	c.Generation = ticket
	s.states[st.ID] = &c
	return &c
}

// Stores st unconditionally, superseding any recomputation in flight
func (s *Store) Put(st *State) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(st, s.issue(st.ID))
}

func (s *Store) Get(id string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.states, id)
	delete(s.latest, id)
	return nil
}

// Returns all sessions ordered by ID
func (s *Store) List() []*State {
	s.mu.RLock()
	out := make([]*State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Applies step to the current state of session id and commits the result.
// On error the stored state is left untouched
func (s *Store) Update(id string, step func(*State) (*State, error)) (*State, error) {
	s.mu.Lock()
	cur, ok := s.states[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ticket := s.issue(id)
	s.mu.Unlock()

	next, err := step(cur)
	if err != nil {
		return nil, err
	}
	return s.Commit(next, ticket)
}
