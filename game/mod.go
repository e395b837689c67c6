package game

import "golang.org/x/exp/rand"

// Move indexes one of a state's children.
type Move int

// State should be immutable - operations on State always return a new copy.
// Play draws whatever randomness the transition needs from rng, so one state
// may be played from several goroutines as long as each owns its rng.
type State interface {
	LegalMoves() []Move
	HasMoves() bool
	Play(move Move, rng *rand.Rand) State
	CumulativeReward() float64
	Depth() int
}

// Playout plays uniformly random moves from s until no moves remain and
// returns the terminal state.
func Playout(s State, rng *rand.Rand) State {
	for s.HasMoves() {
		moves := s.LegalMoves()
		s = s.Play(moves[rng.Intn(len(moves))], rng)
	}
	return s
}
