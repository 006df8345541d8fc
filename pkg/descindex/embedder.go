package descindex

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// HashEmbedder is a deterministic fallback Embedder requiring no external
// provider: text hashes into a fixed-width vector via repeated SHA-256,
// giving reproducible (if semantically shallow) nearest-neighbor behavior
// for environments without a real embedding backend, with no network
// dependency for the default/test path.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder builds a HashEmbedder producing vectors of the given
// dimensionality (must be a positive multiple of 8; rounded up otherwise).
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 64
	}
	if dims%8 != 0 {
		dims += 8 - dims%8
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Dimensions() int { return h.dims }

func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	block := []byte(text)
	for i := 0; i < h.dims; i += 8 {
		sum := sha256.Sum256(append(block, byte(i/8)))
		for j := 0; j < 8 && i+j < h.dims; j++ {
			bits := binary.LittleEndian.Uint32(sum[j*4 : j*4+4])
			// Map to [-1, 1] so cosine similarity is meaningful.
			vec[i+j] = float32(bits)/float32(math.MaxUint32)*2 - 1
		}
	}
	return vec, nil
}
