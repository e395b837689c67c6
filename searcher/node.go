package searcher

import (
	"math"
	"slices"

	"golang.org/x/exp/rand"

	"mixtree/game"
)

// noNode marks the root's parent and an absent child.
const noNode = -1

type node struct {
	state      game.State
	move       game.Move
	parent     int
	children   []int
	unexplored []game.Move
	visits     int
	rewards    float64
}

// tree stores nodes in an arena. Indices stay valid as the arena grows and
// nodes are never removed.
type tree struct {
	nodes []node
}

func newTree(root game.State) *tree {
	t := &tree{}
	t.add(root, 0, noNode)
	return t
}

func (t *tree) add(state game.State, move game.Move, parent int) int {
	t.nodes = append(t.nodes, node{
		state:      state,
		move:       move,
		parent:     parent,
		unexplored: state.LegalMoves(),
	})
	return len(t.nodes) - 1
}

func (t *tree) size() int {
	return len(t.nodes)
}

// terminal reports whether id can never be expanded or descended from.
func (t *tree) terminal(id int) bool {
	n := &t.nodes[id]
	return len(n.unexplored) == 0 && len(n.children) == 0
}

// expand materialises the oldest unexplored move of id and returns the new
// child, or noNode if id is fully expanded.
func (t *tree) expand(id int, rng *rand.Rand) int {
	n := &t.nodes[id]
	if len(n.unexplored) == 0 {
		return noNode
	}
	move := n.unexplored[0]
	n.unexplored = n.unexplored[1:]
	state := n.state.Play(move, rng)

	child := t.add(state, move, id)
	// add may have moved the arena
	t.nodes[id].children = append(t.nodes[id].children, child)
	return child
}

// bestChild returns the child of id maximising UCB1, preferring any child
// that has never been visited. It returns noNode if id has no children.
func (t *tree) bestChild(id int, c float64) int {
	n := &t.nodes[id]
	if len(n.children) == 0 {
		return noNode
	}
	for _, child := range n.children {
		if t.nodes[child].visits == 0 {
			return child
		}
	}

	u := newUCT(c, float64(n.visits))
	best, top := noNode, math.Inf(-1)
	for _, child := range n.children {
		cn := &t.nodes[child]
		if score := u.evaluate(cn.rewards, float64(cn.visits)); score > top {
			best, top = child, score
		}
	}
	return best
}

// sequence returns the moves leading from the root to id.
func (t *tree) sequence(id int) []game.Move {
	var moves []game.Move
	for ; t.nodes[id].parent != noNode; id = t.nodes[id].parent {
		moves = append(moves, t.nodes[id].move)
	}
	slices.Reverse(moves)
	return moves
}
