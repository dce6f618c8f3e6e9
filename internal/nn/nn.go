// Package nn implements the feed-forward neural controller (spec §4.4),
// grounded on original_source/src/balance/balance_nn.c: the float32
// internals, the gated integral feature, and the 4-sample error-delta
// feature are all carried over. Per spec §9's open question, the feature
// count (4 or 6) and output head (XY vs ABC) are configuration rather
// than a fixed design choice, generalizing the original's hard-coded
// 6-input/3-output (ABC) network.
package nn

import (
	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
	"github.com/gmrozek-mchp/mlbb/internal/kinematics"
)

// FeatureCount selects the NN core's input layout.
type FeatureCount int

const (
	Features4 FeatureCount = 4 // error_x, error_delta_x, error_y, error_delta_y
	Features6 FeatureCount = 6 // error_x, error_sum_x, error_delta_x, error_y, error_sum_y, error_delta_y
)

// OutputHead selects what the network's outputs are interpreted as.
type OutputHead int

const (
	OutputXY  OutputHead = iota // 2 outputs: platform tilt (x, y)
	OutputABC                   // 3 outputs: actuator angles (a, b, c)
)

// Gating thresholds, identical to the PID controller's (spec §4.4: "the
// same near_target ∧ moving_slow gating rule with thresholds 512 and 5").
const (
	nearTargetThreshold   = 512
	slowMovementThreshold = 5
	historyDepth          = 10
	filterSize            = 5
)

// Model is the loaded weight set for one feed-forward network: a linear
// input-processing layer, zero or more ReLU hidden layers, and a linear
// output layer, all float32.
type Model struct {
	Features   FeatureCount
	Head       OutputHead
	InputSize  int
	OutputSize int

	// Layers holds each affine transform in order; the last layer is
	// linear (no activation), every layer before it is ReLU.
	Layers []Layer
}

// Layer is one affine transform, weights stored row-major as
// [outSize][inSize].
type Layer struct {
	Weights [][]float32
	Bias    []float32
}

// apply runs input through the layer, returning the pre-activation sum.
func (l Layer) apply(input []float32) []float32 {
	out := make([]float32, len(l.Weights))
	for i, row := range l.Weights {
		var sum float32
		for j, w := range row {
			sum += w * input[j]
		}
		out[i] = sum + l.Bias[i]
	}
	return out
}

func relu(v float32) float32 {
	if v > 0 {
		return v
	}
	return 0
}

// Forward runs the full network, applying ReLU after every layer except
// the last.
func (m *Model) Forward(input []float32) []float32 {
	x := input
	for i, layer := range m.Layers {
		x = layer.apply(x)
		if i < len(m.Layers)-1 {
			for j := range x {
				x[j] = relu(x[j])
			}
		}
	}
	return x
}

// State holds the error-history ring and gated integrators feeding the
// feature-prep stage, mirroring PidState's shape per spec §3.
type State struct {
	model *Model

	errorHistoryX [historyDepth]float32
	errorHistoryY [historyDepth]float32
	errorSumX     float32
	errorSumY     float32
	historyIndex  int

	lastABC kinematics.ABC
	lastXY  kinematics.XY
}

// NewState returns a State bound to model, zeroed.
func NewState(model *Model) *State {
	return &State{model: model}
}

// Reset zeroes the error history and integrators.
func (s *State) Reset() {
	for i := 0; i < historyDepth; i++ {
		s.errorHistoryX[i] = 0
		s.errorHistoryY[i] = 0
	}
	s.errorSumX = 0
	s.errorSumY = 0
	s.historyIndex = 0
}

// Run prepares features from the target/ball q15 samples, runs the
// network, and stores the output mapped per the model's head — either a
// platform tilt (OutputXY, read with LastXY) or an actuator-angle triple
// (OutputABC, read with LastABC).
func (s *State) Run(targetX, targetY, ballX, ballY fixedpoint.Q15, detected bool) {
	if !detected {
		s.lastABC = kinematics.ABC{}
		s.lastXY = kinematics.XY{}
		return
	}

	errorX := fixedpoint.Q15ToFloat(targetX) - fixedpoint.Q15ToFloat(ballX)
	errorY := fixedpoint.Q15ToFloat(targetY) - fixedpoint.Q15ToFloat(ballY)

	deltaX, deltaY := s.calculateDerivative4()
	s.updateIntegral(errorX, errorY, deltaX, deltaY)

	s.errorHistoryX[s.historyIndex] = errorX
	s.errorHistoryY[s.historyIndex] = errorY
	s.historyIndex = (s.historyIndex + 1) % historyDepth

	inputs := s.features(errorX, errorY, deltaX, deltaY)
	outputs := s.model.Forward(inputs)

	switch s.model.Head {
	case OutputABC:
		s.lastABC = kinematics.ABC{
			A: fixedpoint.FloatToQ15(outputs[0]),
			B: fixedpoint.FloatToQ15(outputs[1]),
			C: fixedpoint.FloatToQ15(outputs[2]),
		}
	default:
		s.lastXY = kinematics.XY{
			X: fixedpoint.FloatToQ15(outputs[0]),
			Y: fixedpoint.FloatToQ15(outputs[1]),
		}
	}
}

// LastXY returns the most recent tilt output (valid when Head == OutputXY).
func (s *State) LastXY() kinematics.XY { return s.lastXY }

// LastABC returns the most recent actuator output (valid when Head ==
// OutputABC).
func (s *State) LastABC() kinematics.ABC { return s.lastABC }

// ApplyTo forwards the most recent output to kinematics and/or the
// actuator facade depending on the model's output head.
func (s *State) ApplyTo(k *kinematics.Kinematics) kinematics.ABC {
	if s.model.Head == OutputABC {
		return s.lastABC
	}
	return k.SetXY(s.lastXY)
}

func (s *State) features(errorX, errorY, deltaX, deltaY float32) []float32 {
	if s.model.Features == Features6 {
		return []float32{errorX, s.errorSumX, deltaX, errorY, s.errorSumY, deltaY}
	}
	return []float32{errorX, deltaX, errorY, deltaY}
}

func (s *State) calculateDerivative4() (float32, float32) {
	idxCurrent := mod(s.historyIndex-1, historyDepth)
	idxLag := mod(s.historyIndex-filterSize, historyDepth)
	return s.errorHistoryX[idxCurrent] - s.errorHistoryX[idxLag],
		s.errorHistoryY[idxCurrent] - s.errorHistoryY[idxLag]
}

func (s *State) updateIntegral(errorX, errorY, deltaX, deltaY float32) {
	errThreshold := float32(nearTargetThreshold) / 32767.0
	deltaThreshold := float32(slowMovementThreshold) / 32767.0

	if absf(errorX) < errThreshold && absf(deltaX) < deltaThreshold {
		s.errorSumX = clampf(s.errorSumX+errorX, -1, 1)
	}
	if absf(errorY) < errThreshold && absf(deltaY) < deltaThreshold {
		s.errorSumY = clampf(s.errorSumY+errorY, -1, 1)
	}
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
