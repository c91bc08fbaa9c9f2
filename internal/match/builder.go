package match

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const DefaultDisplaySize = 4

var (
	ErrEmptyPool       = errors.New("question pool is empty")
	ErrUnsolvableRound = errors.New("main question has no explanations")
)

// Round is the display set chosen for one session.
type Round struct {
	Questions    []Question
	Explanations []Explanation
	// Excluded lists pool questions left out because they carry no
	// explanations and could never be matched correctly.
	Excluded []string
}

// Builder selects display sets. It is the only place randomness enters a
// round, so tests pass a seeded source.
type Builder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewBuilder(src rand.Source) *Builder {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Builder{rng: rand.New(src)}
}

// Build picks up to displaySize questions (always including main when given)
// and up to displaySize explanations such that every displayed question has at
// least one of its correct explanations on screen, and there are never fewer
// explanations than questions.
//
// A pool smaller than displaySize yields every available question.
func (b *Builder) Build(main *Question, others []Question, displaySize int) (Round, error) {
	if displaySize <= 0 {
		displaySize = DefaultDisplaySize
	}
	if main != nil && main.ID == "" {
		main = nil
	}
	if main != nil && len(main.Explanations) == 0 {
		return Round{}, fmt.Errorf("%w: %s", ErrUnsolvableRound, main.ID)
	}

	var round Round
	candidates := make([]Question, 0, len(others))
	for _, q := range assemblePool(main, others) {
		if main != nil && q.ID == main.ID {
			continue
		}
		if len(q.Explanations) == 0 {
			round.Excluded = append(round.Excluded, q.ID)
			continue
		}
		candidates = append(candidates, q)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	round.Questions = b.pickQuestions(main, candidates, displaySize)
	if len(round.Questions) == 0 {
		return Round{}, ErrEmptyPool
	}
	round.Explanations = b.pickExplanations(round.Questions, displaySize)
	return round, nil
}

// assemblePool puts main first unless others already carries its id, in
// which case main's value replaces that entry. Later duplicates are dropped.
func assemblePool(main *Question, others []Question) []Question {
	pool := make([]Question, 0, len(others)+1)
	seen := make(map[string]bool, len(others)+1)
	if main != nil {
		pool = append(pool, *main)
		seen[main.ID] = true
	}
	for _, q := range others {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		pool = append(pool, q)
	}
	return pool
}

// pickQuestions walks the shuffled candidates and keeps a question only if
// the kept set still has at least as many distinct explanations as
// questions. Otherwise questions sharing their only explanation could leave
// the round one explanation short of completion.
func (b *Builder) pickQuestions(main *Question, candidates []Question, size int) []Question {
	var picked []Question
	covered := map[string]bool{}
	keep := func(q Question) {
		picked = append(picked, q)
		for _, e := range q.Explanations {
			covered[e.ID] = true
		}
	}
	if main != nil {
		keep(*main)
	}
	for _, q := range shuffled(b.rng, candidates) {
		if len(picked) >= size {
			break
		}
		if len(covered)+newExplanations(covered, q) < len(picked)+1 {
			continue
		}
		keep(q)
	}
	if main == nil {
		return picked
	}
	return shuffled(b.rng, picked)
}

// newExplanations counts q's distinct explanations not yet in covered.
func newExplanations(covered map[string]bool, q Question) int {
	n := 0
	seen := map[string]bool{}
	for _, e := range q.Explanations {
		if covered[e.ID] || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		n++
	}
	return n
}

func (b *Builder) pickExplanations(questions []Question, size int) []Explanation {
	guaranteed := make([]Explanation, 0, len(questions))
	used := map[string]bool{}
	for _, q := range questions {
		unique := uniqExplanations(q.Explanations)
		if len(unique) == 0 {
			continue
		}
		pick := unique[b.rng.Intn(len(unique))]
		// A shared explanation already picked for another question covers this one too.
		if used[pick.ID] {
			continue
		}
		used[pick.ID] = true
		guaranteed = append(guaranteed, pick)
	}

	var all []Explanation
	for _, q := range questions {
		all = append(all, q.Explanations...)
	}
	remaining := make([]Explanation, 0, len(all))
	for _, e := range uniqExplanations(all) {
		if !used[e.ID] {
			remaining = append(remaining, e)
		}
	}

	needed := size - len(guaranteed)
	if needed < 0 {
		needed = 0
	}
	fillers := take(shuffled(b.rng, remaining), needed)
	return shuffled(b.rng, append(guaranteed, fillers...))
}

func uniqExplanations(in []Explanation) []Explanation {
	out := make([]Explanation, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

func shuffled[T any](rng *rand.Rand, in []T) []T {
	out := append([]T(nil), in...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func take[T any](in []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(in) {
		n = len(in)
	}
	return in[:n]
}
