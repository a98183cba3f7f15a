// Package goal supplies the read-only goal inputs the ledger values
// positions against.
package goal

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rustyeddy/dunkbonds/ledger"
)

var ErrGoalNotFound = errors.New("goal not found")

// Goal is what the ledger needs to know about a goal: the payout per bond
// unit and whether the goal is still valid.
type Goal struct {
	ID        string
	Title     string
	FaceValue ledger.Cash
	Valid     bool
}

// Source looks goals up by id.
type Source interface {
	Goal(ctx context.Context, id string) (Goal, error)
}

// Registry is an in-memory Source.
type Registry struct {
	goals map[string]Goal
}

// NewRegistry indexes goals by id. Duplicate or empty ids are rejected.
func NewRegistry(goals ...Goal) (*Registry, error) {
	r := &Registry{goals: make(map[string]Goal, len(goals))}
	for _, g := range goals {
		if g.ID == "" {
			return nil, errors.New("goal id is required")
		}
		if _, dup := r.goals[g.ID]; dup {
			return nil, fmt.Errorf("duplicate goal %q", g.ID)
		}
		r.goals[g.ID] = g
	}
	return r, nil
}

func (r *Registry) Goal(_ context.Context, id string) (Goal, error) {
	g, ok := r.goals[id]
	if !ok {
		return Goal{}, fmt.Errorf("%w: %q", ErrGoalNotFound, id)
	}
	return g, nil
}

// All returns the goals ordered by id.
func (r *Registry) All() []Goal {
	out := make([]Goal, 0, len(r.goals))
	for _, g := range r.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
