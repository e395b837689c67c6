package predictor

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Activation names accepted in a layer definition.
const (
	ReLU     = "relu"
	Identity = "identity"
)

// LayerSpec is one dense layer as stored on disk. Weights has one row per
// output unit.
type LayerSpec struct {
	Weights    [][]float64 `yaml:"weights"`
	Bias       []float64   `yaml:"bias"`
	Activation string      `yaml:"activation"`
}

// MLPSpec is the YAML form of a small feed-forward network. Inputs are
// standardised with Shift and Scale before the first layer, and outputs are
// clamped to [Min, Max] when those are given.
type MLPSpec struct {
	Inputs int         `yaml:"inputs"`
	Shift  []float64   `yaml:"shift"`
	Scale  []float64   `yaml:"scale"`
	Layers []LayerSpec `yaml:"layers"`
	Min    []float64   `yaml:"min"`
	Max    []float64   `yaml:"max"`
}

type layer struct {
	weights *mat.Dense
	bias    *mat.VecDense
	relu    bool
}

// MLP is a compiled network. It holds no mutable state after construction.
type MLP struct {
	inputs int
	shift  []float64
	scale  []float64
	layers []layer
	min    []float64
	max    []float64
}

// LoadMLP reads a network definition from a YAML file.
func LoadMLP(path string) (*MLP, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	m, err := ParseMLP(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return m, nil
}

// ParseMLP decodes and validates a network definition.
func ParseMLP(data []byte) (*MLP, error) {
	var spec MLPSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return NewMLP(spec)
}

// NewMLP compiles a validated spec into a network.
func NewMLP(spec MLPSpec) (*MLP, error) {
	if spec.Inputs <= 0 {
		return nil, errors.New("model must declare a positive number of inputs")
	}
	if len(spec.Layers) == 0 {
		return nil, errors.New("model must have at least one layer")
	}
	if spec.Shift != nil && len(spec.Shift) != spec.Inputs {
		return nil, fmt.Errorf("shift has %d entries, want %d", len(spec.Shift), spec.Inputs)
	}
	if spec.Scale != nil && len(spec.Scale) != spec.Inputs {
		return nil, fmt.Errorf("scale has %d entries, want %d", len(spec.Scale), spec.Inputs)
	}
	for i, s := range spec.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scale %d is zero", i)
		}
	}

	m := &MLP{inputs: spec.Inputs, shift: spec.Shift, scale: spec.Scale}
	width := spec.Inputs
	for i, ls := range spec.Layers {
		rows := len(ls.Weights)
		if rows == 0 {
			return nil, fmt.Errorf("layer %d has no units", i)
		}
		if len(ls.Bias) != rows {
			return nil, fmt.Errorf("layer %d has %d biases for %d units", i, len(ls.Bias), rows)
		}

		data := make([]float64, 0, rows*width)
		for r, row := range ls.Weights {
			if len(row) != width {
				return nil, fmt.Errorf("layer %d row %d has %d weights, want %d", i, r, len(row), width)
			}
			data = append(data, row...)
		}

		var relu bool
		switch ls.Activation {
		case ReLU:
			relu = true
		case Identity, "":
		default:
			return nil, fmt.Errorf("layer %d has unknown activation %q", i, ls.Activation)
		}

		m.layers = append(m.layers, layer{
			weights: mat.NewDense(rows, width, data),
			bias:    mat.NewVecDense(rows, append([]float64(nil), ls.Bias...)),
			relu:    relu,
		})
		width = rows
	}

	if spec.Min != nil && len(spec.Min) != width {
		return nil, fmt.Errorf("min has %d entries, want %d", len(spec.Min), width)
	}
	if spec.Max != nil && len(spec.Max) != width {
		return nil, fmt.Errorf("max has %d entries, want %d", len(spec.Max), width)
	}
	m.min, m.max = spec.Min, spec.Max
	return m, nil
}

// Inputs is the expected feature width.
func (m *MLP) Inputs() int {
	return m.inputs
}

// Predict runs a forward pass. It panics if the feature width is wrong.
func (m *MLP) Predict(features []float64) []float64 {
	if len(features) != m.inputs {
		panic(fmt.Sprintf("model expects %d features, got %d", m.inputs, len(features)))
	}

	x := make([]float64, len(features))
	for i, f := range features {
		if m.shift != nil {
			f -= m.shift[i]
		}
		if m.scale != nil {
			f /= m.scale[i]
		}
		x[i] = f
	}

	v := mat.NewVecDense(len(x), x)
	for _, l := range m.layers {
		rows, _ := l.weights.Dims()
		next := mat.NewVecDense(rows, nil)
		next.MulVec(l.weights, v)
		next.AddVec(next, l.bias)
		if l.relu {
			for i := 0; i < rows; i++ {
				next.SetVec(i, math.Max(0, next.AtVec(i)))
			}
		}
		v = next
	}

	out := make([]float64, v.Len())
	for i := range out {
		y := v.AtVec(i)
		if m.min != nil {
			y = math.Max(y, m.min[i])
		}
		if m.max != nil {
			y = math.Min(y, m.max[i])
		}
		out[i] = y
	}
	return out
}
