package telemetry

import (
	"sync"
)

const DefaultCapacity = 500

// Sample is a single point of the simulation time series
type Sample struct {
	// simulated time in seconds
	Timestamp   float64 `json:"timestamp"`
	Setpoint    float64 `json:"setpoint"`
	Measurement float64 `json:"measurement"`
	Control     float64 `json:"control"`
}

// Buffer is an append-only, time ordered ring of samples.
// When full, appending drops the oldest sample.
// It is safe for one writer and any number of concurrent readers.
type Buffer struct {
	mu       sync.RWMutex
	samples  []Sample
	start    int
	size     int
	appended uint64
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		samples: make([]Sample, capacity),
	}
}

func (b *Buffer) Capacity() int {
	return len(b.samples)
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Appended returns the number of samples appended since creation or the last Clear,
// including those that have since been dropped.
func (b *Buffer) Appended() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.appended
}

func (b *Buffer) Append(sample Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.samples)
	if b.size < capacity {
		b.samples[(b.start+b.size)%capacity] = sample
		b.size++
	} else {
		b.samples[b.start] = sample
		b.start = (b.start + 1) % capacity
	}
	b.appended++
}

// Snapshot returns a copy of all samples, oldest first
func (b *Buffer) Snapshot() []Sample {
	return b.Last(-1)
}

// Last returns a copy of the n most recent samples, oldest first.
// A negative n returns all samples.
func (b *Buffer) Last(n int) []Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n < 0 || n > b.size {
		n = b.size
	}
	result := make([]Sample, n)
	capacity := len(b.samples)
	offset := b.size - n
	for i := 0; i < n; i++ {
		result[i] = b.samples[(b.start+offset+i)%capacity]
	}
	return result
}

// Latest returns the most recent sample, if any
func (b *Buffer) Latest() (Sample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return Sample{}, false
	}
	return b.samples[(b.start+b.size-1)%len(b.samples)], true
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.start = 0
	b.size = 0
	b.appended = 0
}
