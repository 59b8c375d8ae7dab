// Package store provides in-memory storage for named pipelines and their
// rewrite history.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// RewriteState represents the outcome of a recorded rewrite. Rewrites run
// synchronously, so there is no active state.
type RewriteState string

const (
	RewriteSucceeded RewriteState = "SUCCEEDED"
	RewriteFailed    RewriteState = "FAILED"
)

// Pipeline is a stored call chain with its canonical form.
type Pipeline struct {
	Name       string    `json:"name"`
	Source     string    `json:"source"`
	Canonical  string    `json:"canonical"`
	RevisionID string    `json:"revisionId"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

// Rewrite is one recorded run of the rewriter against a pipeline source.
type Rewrite struct {
	Name       string       `json:"name"`
	Pipeline   string       `json:"pipeline"`
	State      RewriteState `json:"state"`
	Source     string       `json:"source"`
	Result     string       `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreateTime time.Time    `json:"createTime"`
}

// Store is a thread-safe in-memory registry of pipelines and rewrites.
type Store struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
	rewrites  map[string][]*Rewrite

	// Counters for generating unique IDs
	rwCounter  int64
	revCounter int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		pipelines: make(map[string]*Pipeline),
		rewrites:  make(map[string][]*Rewrite),
	}
}

// CreatePipeline stores a new pipeline under name.
func (s *Store) CreatePipeline(name, source, canonical string) (*Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pipelines[name]; exists {
		return nil, fmt.Errorf("pipeline '%s' already exists", name)
	}

	s.revCounter++
	now := time.Now()
	p := &Pipeline{
		Name:       name,
		Source:     source,
		Canonical:  canonical,
		RevisionID: fmt.Sprintf("%06d", s.revCounter),
		CreateTime: now,
		UpdateTime: now,
	}
	s.pipelines[name] = p
	return p, nil
}

// GetPipeline retrieves a pipeline by name.
func (s *Store) GetPipeline(name string) (*Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("pipeline '%s' not found", name)
	}
	return p, nil
}

// ListPipelines returns all pipelines sorted by name.
func (s *Store) ListPipelines() []*Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Pipeline, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UpdatePipeline replaces a pipeline's source and canonical form and bumps
// its revision.
func (s *Store) UpdatePipeline(name, source, canonical string) (*Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("pipeline '%s' not found", name)
	}

	s.revCounter++
	p.Source = source
	p.Canonical = canonical
	p.RevisionID = fmt.Sprintf("%06d", s.revCounter)
	p.UpdateTime = time.Now()

	return p, nil
}

// DeletePipeline removes a pipeline and its rewrite history.
func (s *Store) DeletePipeline(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pipelines[name]; !ok {
		return fmt.Errorf("pipeline '%s' not found", name)
	}
	delete(s.pipelines, name)
	delete(s.rewrites, name)
	return nil
}

// RecordRewrite appends a rewrite record for a pipeline. A nil rewriteErr
// records a succeeded rewrite carrying result; otherwise the record fails
// with the error text.
func (s *Store) RecordRewrite(pipeline, source, result string, rewriteErr error) (*Rewrite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pipelines[pipeline]; !ok {
		return nil, fmt.Errorf("pipeline '%s' not found", pipeline)
	}

	s.rwCounter++
	rw := &Rewrite{
		Name:       fmt.Sprintf("rw-%d", s.rwCounter),
		Pipeline:   pipeline,
		State:      RewriteSucceeded,
		Source:     source,
		Result:     result,
		CreateTime: time.Now(),
	}
	if rewriteErr != nil {
		rw.State = RewriteFailed
		rw.Result = ""
		rw.Error = rewriteErr.Error()
	}
	s.rewrites[pipeline] = append(s.rewrites[pipeline], rw)
	return rw, nil
}

// ListRewrites returns a pipeline's rewrites, newest first.
func (s *Store) ListRewrites(pipeline string) ([]*Rewrite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.pipelines[pipeline]; !ok {
		return nil, fmt.Errorf("pipeline '%s' not found", pipeline)
	}

	recorded := s.rewrites[pipeline]
	result := make([]*Rewrite, 0, len(recorded))
	for i := len(recorded) - 1; i >= 0; i-- {
		result = append(result, recorded[i])
	}
	return result, nil
}

// GetRewrite retrieves one rewrite of a pipeline by name.
func (s *Store) GetRewrite(pipeline, name string) (*Rewrite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rw := range s.rewrites[pipeline] {
		if rw.Name == name {
			return rw, nil
		}
	}
	return nil, fmt.Errorf("rewrite '%s' not found", name)
}
