// Package agent learns state values for one team and plays Hexus with them.
package agent

import (
	"context"
	"fmt"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/qtable"
)

// Config holds the learning hyperparameters
type Config struct {
	LearningRate float64 `mapstructure:"learning_rate"`
	Discount     float64 `mapstructure:"discount"`
	Epsilon      float64 `mapstructure:"epsilon"`
}

// DefaultConfig returns the stock hyperparameters
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.25,
		Discount:     0.9,
		Epsilon:      0.5,
	}
}

// Learner applies one-step temporal-difference updates to a value table
type Learner struct {
	learningRate float64
	discount     float64
}

// NewLearner creates a learner with the given step size and discount
func NewLearner(learningRate, discount float64) *Learner {
	return &Learner{learningRate: learningRate, discount: discount}
}

// Value reads key from vt. Unseen states are worth 0 and are not written.
func Value(ctx context.Context, vt qtable.ValueTable, key string) (float64, error) {
	v, ok, err := vt.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read value: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return v, nil
}

// Update moves the value of state toward reward plus the discounted best
// value among next. An empty next marks a terminal transition.
func (l *Learner) Update(ctx context.Context, vt qtable.ValueTable, state string, reward float64, next []string) (float64, error) {
	current, err := Value(ctx, vt, state)
	if err != nil {
		return 0, err
	}

	future := 0.0
	for i, key := range next {
		v, err := Value(ctx, vt, key)
		if err != nil {
			return 0, err
		}
		if i == 0 || v > future {
			future = v
		}
	}

	updated := (1-l.learningRate)*current + l.learningRate*(reward+l.discount*future)
	if err := vt.Set(ctx, state, updated); err != nil {
		return 0, fmt.Errorf("write value: %w", err)
	}
	return updated, nil
}
