package texts

import (
	"fmt"
	"math/rand"
	"time"
)

// Picker selects paragraphs uniformly at random.
type Picker struct {
	rnd  *rand.Rand
	pool []string
	last int
}

// NewPicker returns a Picker over pool seeded with the current time.
func NewPicker(pool []string) (*Picker, error) {
	return NewPickerWithSource(pool, rand.NewSource(time.Now().UnixNano()))
}

// NewPickerWithSource returns a Picker drawing from src.
func NewPickerWithSource(pool []string, src rand.Source) (*Picker, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("paragraph pool is empty")
	}
	for i, p := range pool {
		if p == "" {
			return nil, fmt.Errorf("paragraph %d is empty", i)
		}
	}
	return &Picker{
		rnd:  rand.New(src),
		pool: append([]string(nil), pool...),
		last: -1,
	}, nil
}

// Pick returns a paragraph chosen uniformly from the pool.
func (p *Picker) Pick() string {
	p.last = p.rnd.Intn(len(p.pool))
	return p.pool[p.last]
}

// LastIndex returns the index of the most recent pick, or -1.
func (p *Picker) LastIndex() int {
	return p.last
}

// Len returns the pool size.
func (p *Picker) Len() int {
	return len(p.pool)
}
