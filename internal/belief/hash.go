package belief

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/syntrometry/syntrocore/internal/numeric"
)

// #region hash-embedder

// HashEmbedder is a deterministic, dependency-free belief transform: every
// output dimension is an FNV-1a hash of the input bytes mixed with the
// dimension index, mapped onto [-1, 1] and normalized to unit length. It
// stands in for a trained net when reproducibility matters more than
// representational power, which is what replay runs on.
type HashEmbedder struct {
	embedDim   int
	projectDim int
}

// NewHashEmbedder creates a HashEmbedder producing embedDim-wide embeddings
// and projectDim-wide projections.
func NewHashEmbedder(embedDim, projectDim int) *HashEmbedder {
	if embedDim <= 0 {
		embedDim = 16
	}
	if projectDim <= 0 {
		projectDim = 8
	}
	return &HashEmbedder{embedDim: embedDim, projectDim: projectDim}
}

// Embed hashes the input into belief space.
func (e *HashEmbedder) Embed(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("hash embedder: empty input")
	}
	raw := make([]byte, 8*len(input))
	for i, x := range input {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(x))
	}
	out := make([]float64, e.embedDim)
	for i := range out {
		h := fnv.New64a()
		h.Write([]byte{byte(i), byte(i >> 8)})
		h.Write(raw)
		out[i] = (float64(h.Sum64())/float64(math.MaxUint64))*2 - 1
	}
	norm := numeric.Norm(out)
	if norm < numeric.Epsilon {
		return out, nil
	}
	for i := range out {
		out[i] /= norm
	}
	return out, nil
}

// Project keeps the first projectDim dimensions of the embedding,
// zero-padding when the embedding is shorter.
func (e *HashEmbedder) Project(embedding []float64) ([]float64, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("hash embedder: empty embedding")
	}
	out := numeric.PadTo(embedding, e.projectDim)
	return out[:e.projectDim], nil
}

// #endregion hash-embedder
