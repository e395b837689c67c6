package simulator

import (
	"golang.org/x/exp/rand"

	"mixtree/game"
)

type node struct {
	state    game.State
	parent   int
	children []int
	mean     float64
	sd       float64
}

// tree is an append-only arena. A child always has a larger index than its
// parent.
type tree struct {
	nodes []node
}

func newTree(root game.State) *tree {
	return &tree{nodes: []node{{state: root, parent: -1}}}
}

func (t *tree) size() int {
	return len(t.nodes)
}

// expand adds one child per legal move of id and returns their indices.
func (t *tree) expand(id int, rng *rand.Rand) []int {
	state := t.nodes[id].state
	moves := state.LegalMoves()
	children := make([]int, 0, len(moves))
	for _, move := range moves {
		t.nodes = append(t.nodes, node{state: state.Play(move, rng), parent: id})
		children = append(children, len(t.nodes)-1)
	}
	t.nodes[id].children = children
	return children
}

// resolve fixes a finished game's statistics to its reward.
func (t *tree) resolve(id int) {
	n := &t.nodes[id]
	n.mean, n.sd = n.state.CumulativeReward(), 0
}
