// Package compressibility estimates how well a sample compresses using real
// codecs. A ratio close to (or above) 1 corroborates a high entropy reading:
// the data is already compressed or encrypted.
package compressibility

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MinSampleSize is the smallest sample that is probed. Below it, container
// overhead dominates and the ratios say nothing about the content.
const MinSampleSize = 64

// Codec compresses a whole buffer in one call.
type Codec interface {
	Name() string
	Compress(data []byte) ([]byte, error)
}

// Ratio is the result of compressing the sample with one codec.
type Ratio struct {
	Codec string `json:"codec"`

	CompressedSize int `json:"compressed_size"`

	// Ratio is the compressed size divided by the original size.
	Ratio float64 `json:"ratio"`
}

// Estimate holds the ratios of all codecs that succeeded, in the order the
// codecs were given.
type Estimate struct {
	SampleSize int     `json:"sample_size"`
	Ratios     []Ratio `json:"ratios"`

	// Best is the smallest ratio of all codecs, or 0 if none ran.
	Best float64 `json:"best"`

	// BestCodec names the codec that achieved Best.
	BestCodec string `json:"best_codec,omitempty"`
}

// Empty reports whether no codec produced a ratio.
func (e Estimate) Empty() bool {
	return len(e.Ratios) == 0
}

// DefaultCodecs returns the codecs used when Probe is called without any.
func DefaultCodecs() []Codec {
	return []Codec{Zstd{}, S2{}, LZ4{}}
}

/*
Probe compresses sample with each codec (DefaultCodecs if none are given) and
reports the resulting ratios. Samples shorter than MinSampleSize give an empty
Estimate. A codec that fails is left out of the estimate; Probe returns the
first such error together with the ratios of the codecs that succeeded.
*/
func Probe(sample []byte, codecs ...Codec) (Estimate, error) {
	est := Estimate{SampleSize: len(sample), Ratios: []Ratio{}}
	if len(sample) < MinSampleSize {
		return est, nil
	}
	if len(codecs) == 0 {
		codecs = DefaultCodecs()
	}

	var firstErr error
	for _, c := range codecs {
		out, err := c.Compress(sample)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", c.Name(), err)
			}
			continue
		}
		r := Ratio{
			Codec:          c.Name(),
			CompressedSize: len(out),
			Ratio:          float64(len(out)) / float64(len(sample)),
		}
		est.Ratios = append(est.Ratios, r)
		if est.BestCodec == "" || r.Ratio < est.Best {
			est.Best = r.Ratio
			est.BestCodec = r.Codec
		}
	}
	return est, firstErr
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return err
		}
		return enc
	},
}

// Zstd compresses with Zstandard at the default level.
type Zstd struct{}

func (Zstd) Name() string { return "zstd" }

func (Zstd) Compress(data []byte) ([]byte, error) {
	v := zstdEncoderPool.Get()
	enc, ok := v.(*zstd.Encoder)
	if !ok {
		return nil, fmt.Errorf("creating zstd encoder: %w", v.(error))
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// S2 compresses with the S2 extension of Snappy.
type S2 struct{}

func (S2) Name() string { return "s2" }

func (S2) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// LZ4 compresses with LZ4 block compression.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// incompressible: the block would be stored as is
		return data, nil
	}
	return dst[:n], nil
}
