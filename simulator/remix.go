package simulator

import (
	"math"

	"github.com/samber/lo"

	"mixtree/experiments/metrics"
	"mixtree/mixture"
)

// remix recomputes every internal node's statistics from its children,
// treating the children as an equally weighted mixture. Children are visited
// before their parents because the arena orders them after.
func (s *Simulator) remix(t *tree) error {
	for id := t.size() - 1; id >= 0; id-- {
		n := &t.nodes[id]
		if len(n.children) == 0 {
			continue
		}

		children := lo.Map(n.children, func(c int, _ int) mixture.Dist {
			return mixture.Dist{Mean: t.nodes[c].mean, SD: t.nodes[c].sd}
		})
		n.mean, n.sd = mix(children)

		record := metrics.NodeRecord{
			Mean:     n.mean,
			SD:       n.sd,
			Depth:    n.state.Depth(),
			K:        len(children),
			Varphi2:  mixture.ReverseToVarphi2(n.sd, lo.Map(children, func(d mixture.Dist, _ int) float64 { return d.SD })),
			Children: children,
		}
		if err := s.sink.WriteMix(record); err != nil {
			return err
		}
	}
	return nil
}

// mix returns the mean and standard deviation of an equally weighted mixture.
// Means are taken relative to the first child's, so identical children give
// exactly zero spread.
func mix(children []mixture.Dist) (float64, float64) {
	k := float64(len(children))
	shift := children[0].Mean
	offset := lo.SumBy(children, func(d mixture.Dist) float64 { return d.Mean - shift }) / k
	between := lo.SumBy(children, func(d mixture.Dist) float64 {
		dev := d.Mean - shift - offset
		return dev * dev
	}) / k
	within := lo.SumBy(children, func(d mixture.Dist) float64 { return d.SD * d.SD }) / k
	return shift + offset, math.Sqrt(between + within)
}
