package metrics

import "sync"

// Memory keeps every record in order of arrival.
type Memory struct {
	mu        sync.Mutex
	Mixes     []NodeRecord
	Frontier  []FrontierRecord
	Walks     []NodeRecord
	Counts    []CountRecord
	Terminals []int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) WriteMix(r NodeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mixes = append(m.Mixes, r)
	return nil
}

func (m *Memory) WriteFrontier(rs []FrontierRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frontier = append(m.Frontier, rs...)
	return nil
}

func (m *Memory) WriteWalk(r NodeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Walks = append(m.Walks, r)
	return nil
}

func (m *Memory) WriteCount(r CountRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counts = append(m.Counts, r)
	return nil
}

func (m *Memory) WriteTerminal(depth int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Terminals = append(m.Terminals, depth)
	return nil
}
