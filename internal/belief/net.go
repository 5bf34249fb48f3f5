package belief

import (
	"fmt"

	"github.com/openfluke/loom/nn"
)

// #region net-embedder

// NetEmbedder runs the belief transform through two small dense networks:
// inSize → hidden → embedDim for Embed and embedDim → projectDim for
// Project. The weights are whatever the framework initializes; nothing in
// this core trains them.
type NetEmbedder struct {
	inSize     int
	embedDim   int
	projectDim int
	embedNet   *nn.Network
	projectNet *nn.Network
}

// NewNetEmbedder builds the two networks.
func NewNetEmbedder(inSize, embedDim, projectDim int) (*NetEmbedder, error) {
	if inSize <= 0 || embedDim <= 0 || projectDim <= 0 {
		return nil, fmt.Errorf("net embedder: non-positive sizes %d/%d/%d", inSize, embedDim, projectDim)
	}
	hidden := inSize
	if hidden < embedDim {
		hidden = embedDim
	}

	embedNet := nn.NewNetwork(inSize, 1, 1, 3)
	embedNet.SetLayer(0, 0, 0, nn.InitDenseLayer(inSize, hidden, nn.ActivationLeakyReLU))
	embedNet.SetLayer(0, 0, 1, nn.InitDenseLayer(hidden, hidden, nn.ActivationLeakyReLU))
	embedNet.SetLayer(0, 0, 2, nn.InitDenseLayer(hidden, embedDim, nn.ActivationSigmoid))

	projectNet := nn.NewNetwork(embedDim, 1, 1, 2)
	projectNet.SetLayer(0, 0, 0, nn.InitDenseLayer(embedDim, embedDim, nn.ActivationLeakyReLU))
	projectNet.SetLayer(0, 0, 1, nn.InitDenseLayer(embedDim, projectDim, nn.ActivationSigmoid))

	return &NetEmbedder{
		inSize:     inSize,
		embedDim:   embedDim,
		projectDim: projectDim,
		embedNet:   embedNet,
		projectNet: projectNet,
	}, nil
}

// Embed folds the assembled step input into belief space. Sigmoid outputs
// are remapped onto [-1, 1].
func (e *NetEmbedder) Embed(input []float64) ([]float64, error) {
	if len(input) != e.inSize {
		return nil, fmt.Errorf("net embedder: input length %d, want %d", len(input), e.inSize)
	}
	out, err := e.embedNet.ForwardCPU(toFloat32(input))
	if err != nil {
		return nil, fmt.Errorf("embed forward: %w", err)
	}
	return fromSigmoid(out), nil
}

// Project maps a belief embedding down to the cascade input width.
func (e *NetEmbedder) Project(embedding []float64) ([]float64, error) {
	if len(embedding) != e.embedDim {
		return nil, fmt.Errorf("net embedder: embedding length %d, want %d", len(embedding), e.embedDim)
	}
	out, err := e.projectNet.ForwardCPU(toFloat32(embedding))
	if err != nil {
		return nil, fmt.Errorf("project forward: %w", err)
	}
	return fromSigmoid(out), nil
}

// #endregion net-embedder

// #region conversion

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// fromSigmoid maps [0, 1] activations onto [-1, 1] float64s.
func fromSigmoid(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)*2 - 1
	}
	return out
}

// #endregion conversion
