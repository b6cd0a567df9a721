// Package store provides in-memory storage for evaluation history.
package store

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lemonberrylabs/rpncalc/pkg/batch"
)

// EvaluationState represents the outcome of a stored evaluation.
type EvaluationState string

const (
	EvaluationSucceeded EvaluationState = "SUCCEEDED"
	EvaluationFailed    EvaluationState = "FAILED"
)

// namePrefix is the resource collection all evaluation names live under.
const namePrefix = "evaluations/"

// Evaluation represents one stored evaluation.
type Evaluation struct {
	Name       string           `json:"name"`
	Mode       batch.Mode       `json:"mode"`
	State      EvaluationState  `json:"state"`
	Expression string           `json:"expression"`
	RPN        string           `json:"rpn"`
	Result     string           `json:"result"`
	Exact      string           `json:"exact,omitempty"`
	Error      *batch.ErrorInfo `json:"error,omitempty"`
	CreateTime time.Time        `json:"createTime"`
}

// Store is a thread-safe in-memory storage for evaluations.
type Store struct {
	mu          sync.RWMutex
	evaluations map[string]*Evaluation
	order       []string

	// Counter for generating unique IDs
	evalCounter int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		evaluations: make(map[string]*Evaluation),
	}
}

// CreateEvaluation stores the outcome of one record and returns it.
func (s *Store) CreateEvaluation(mode batch.Mode, rec batch.Record) *Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evalCounter++
	name := namePrefix + strconv.FormatInt(s.evalCounter, 10)

	entry := rec.Entry()
	ev := &Evaluation{
		Name:       name,
		Mode:       mode,
		State:      EvaluationSucceeded,
		Expression: entry.Expression,
		RPN:        entry.RPN,
		Result:     entry.Result,
		Exact:      entry.Exact,
		Error:      entry.Error,
		CreateTime: time.Now(),
	}
	if !rec.OK() {
		ev.State = EvaluationFailed
	}

	s.evaluations[name] = ev
	s.order = append(s.order, name)
	return ev
}

// GetEvaluation retrieves an evaluation by its full name ("evaluations/3")
// or bare ID ("3").
func (s *Store) GetEvaluation(name string) (*Evaluation, error) {
	if !strings.HasPrefix(name, namePrefix) {
		name = namePrefix + name
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.evaluations[name]
	if !ok {
		return nil, fmt.Errorf("evaluation '%s' not found", name)
	}
	return ev, nil
}

// ListEvaluations returns all evaluations in creation order.
func (s *Store) ListEvaluations() []*Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Evaluation, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.evaluations[name])
	}
	return result
}

// Clear removes all evaluations. IDs keep increasing afterwards.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations = make(map[string]*Evaluation)
	s.order = nil
}
