package metrics

import "mixtree/mixture"

// NodeRecord describes how one internal node's distribution is split among its
// children.
type NodeRecord struct {
	Mean     float64
	SD       float64
	Depth    int
	K        int
	Varphi2  float64
	Children []mixture.Dist
}

// FrontierRecord is the rollout estimate of one frontier node.
type FrontierRecord struct {
	Mean  float64
	SD    float64
	K     int
	Depth int
}

// CountRecord tracks the branching factor along a walk. Delta is the change
// from the previous state on the same walk.
type CountRecord struct {
	Depth int
	K     int
	Delta int
}

// TreeSink receives statistics from the partial-tree simulator. Writes may
// come from several goroutines.
type TreeSink interface {
	WriteMix(r NodeRecord) error
	WriteFrontier(rs []FrontierRecord) error
}

// WalkSink receives statistics from random walks.
type WalkSink interface {
	WriteWalk(r NodeRecord) error
	WriteCount(r CountRecord) error
	WriteTerminal(depth int) error
}

type Sink interface {
	TreeSink
	WalkSink
}

type discard struct{}

// Discard drops every record.
var Discard Sink = discard{}

func (discard) WriteMix(NodeRecord) error            { return nil }
func (discard) WriteFrontier([]FrontierRecord) error { return nil }
func (discard) WriteWalk(NodeRecord) error           { return nil }
func (discard) WriteCount(CountRecord) error         { return nil }
func (discard) WriteTerminal(int) error              { return nil }
