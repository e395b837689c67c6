package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	StartTime time.Time
	Duration  time.Duration
	Episodes  int
	Nodes     int
	MaxDepth  int
}

type Collector interface {
	Start()
	AddEpisode()
	AddNode()
	ObserveDepth(depth int)
	Complete() SearchMetric
}

type collector struct {
	startTime time.Time
	episodes  atomic.Int32
	nodes     atomic.Int32
	maxDepth  atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
	m.episodes.Store(0)
	m.nodes.Store(0)
	m.maxDepth.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) ObserveDepth(depth int) {
	for {
		current := m.maxDepth.Load()
		if int32(depth) <= current || m.maxDepth.CompareAndSwap(current, int32(depth)) {
			return
		}
	}
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		StartTime: m.startTime,
		Duration:  time.Since(m.startTime),
		Episodes:  int(m.episodes.Load()),
		Nodes:     int(m.nodes.Load()),
		MaxDepth:  int(m.maxDepth.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                 {}
func (m *dummyCollector) AddEpisode()            {}
func (m *dummyCollector) AddNode()               {}
func (m *dummyCollector) ObserveDepth(depth int) {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
