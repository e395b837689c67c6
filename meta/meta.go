// meta/meta.go
package meta

// Iterations defines the number of MCTS iterations.
const Iterations = 100_000

// Exploration is the UCB1 exploration constant C.
const Exploration = 1.0

// FrontierCap bounds the number of frontier nodes the partial-tree simulator
// grows before estimating.
const FrontierCap = 10_000

// Rollouts per frontier node for the shallow and deep partial-tree runs.
const PartialRollouts = 10
const DeepRollouts = 100

// ProgressInterval is how many items a worker processes between progress logs.
const ProgressInterval = 1000

// Walks is the default number of random walks.
const Walks = 1000
