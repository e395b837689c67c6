package simulator

import (
	"container/heap"

	"golang.org/x/exp/rand"
)

type Growth int

const (
	// Shallowest repeatedly pops the shallowest frontier node and dives from it
	// to the end of the game, pushing back the siblings it passes.
	Shallowest Growth = iota
	// Uniform repeatedly replaces a uniformly chosen frontier node with its
	// children.
	Uniform
)

func (g Growth) String() string {
	switch g {
	case Shallowest:
		return "shallowest"
	case Uniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// depthQueue is a min-heap of node indices keyed by depth, then index.
type depthQueue struct {
	tree *tree
	ids  []int
}

func (q depthQueue) Len() int { return len(q.ids) }

func (q depthQueue) Less(i, j int) bool {
	di, dj := q.tree.nodes[q.ids[i]].state.Depth(), q.tree.nodes[q.ids[j]].state.Depth()
	if di != dj {
		return di < dj
	}
	return q.ids[i] < q.ids[j]
}

func (q depthQueue) Swap(i, j int) { q.ids[i], q.ids[j] = q.ids[j], q.ids[i] }

func (q *depthQueue) Push(x any) { q.ids = append(q.ids, x.(int)) }

func (q *depthQueue) Pop() any {
	last := q.ids[len(q.ids)-1]
	q.ids = q.ids[:len(q.ids)-1]
	return last
}

// growShallowest grows t until at least limit nodes wait in the queue or no
// unfinished node is left. Finished children are resolved as they appear.
func growShallowest(t *tree, limit int, rng *rand.Rand) []int {
	q := &depthQueue{tree: t, ids: []int{0}}
	for q.Len() > 0 && q.Len() < limit {
		cur := heap.Pop(q).(int)
		for {
			var open []int
			for _, child := range t.expand(cur, rng) {
				if t.nodes[child].state.HasMoves() {
					open = append(open, child)
				} else {
					t.resolve(child)
				}
			}
			if len(open) == 0 {
				break
			}

			next := rng.Intn(len(open))
			cur = open[next]
			for i, child := range open {
				if i != next {
					heap.Push(q, child)
				}
			}
		}
	}
	return q.ids
}

// growUniform grows t until the worklist holds at least limit nodes or is
// empty. A finished node drawn from the worklist is resolved and dropped.
func growUniform(t *tree, limit int, rng *rand.Rand) []int {
	work := []int{0}
	for len(work) > 0 && len(work) < limit {
		i := rng.Intn(len(work))
		cur := work[i]
		work[i] = work[len(work)-1]
		work = work[:len(work)-1]

		if !t.nodes[cur].state.HasMoves() {
			t.resolve(cur)
			continue
		}
		work = append(work, t.expand(cur, rng)...)
	}
	return work
}
