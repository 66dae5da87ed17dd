package mocks

import (
	"github.com/mcoot/seabattle/internal/dependencies/random"
)

// MockRandom replays queued Intn results
type MockRandom struct {
	results []int
	index   int

	// Calls records the n passed to every Intn call
	Calls []int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result reduced into [0, n), or 0 once the queue is drained
func (r *MockRandom) Intn(n int) int {
	r.Calls = append(r.Calls, n)
	if n <= 0 || r.index >= len(r.results) {
		return 0
	}
	result := r.results[r.index]
	r.index++
	return result % n
}

// QueueIntn adds values to the result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.results = append(r.results, values...)
}
