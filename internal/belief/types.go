package belief

// #region embedder-interface

// Embedder abstracts the belief transform so the engine never depends on
// its internals. Embed folds the assembled step input into belief space;
// Project maps a belief embedding down to the cascade input width.
type Embedder interface {
	Embed(input []float64) ([]float64, error)
	Project(embedding []float64) ([]float64, error)
}

// #endregion embedder-interface

// #region weight-carrier

// WeightCarrier is implemented by embedders whose weights travel inside
// the persisted snapshot. The bytes are opaque to the engine.
type WeightCarrier interface {
	ExportWeights() ([]byte, error)
	ImportWeights(data []byte) error
}

// #endregion weight-carrier
