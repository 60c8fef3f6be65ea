// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"os"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/pdiddy/citation-engine/pkg/types"
)

const defaultMaxSeqLen = 256

// ONNX is the preferred embedder: a pretrained sentence-embedding model
// run through onnxruntime, with mean pooling over the last hidden state
// and L2 normalization, so cosine similarity reduces to a dot product.
type ONNX struct {
	session   *ort.DynamicAdvancedSession
	tk        *tokenizer.Tokenizer
	maxSeqLen int
}

// NewONNX loads the tokenizer and model named in cfg. Any failure (missing
// files, runtime library not present, incompatible model) is returned to
// the caller, which falls back to the TF-IDF mode for the run.
func NewONNX(cfg types.EmbedConfig) (*ONNX, error) {
	for _, path := range []string{cfg.ModelPath, cfg.TokenizerPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("model file: %w", err)
		}
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	if cfg.OrtLibrary != "" {
		ort.SetSharedLibraryPath(cfg.OrtLibrary)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initializing onnxruntime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	maxSeqLen := cfg.MaxSeqLen
	if maxSeqLen <= 0 {
		maxSeqLen = defaultMaxSeqLen
	}

	return &ONNX{session: session, tk: tk, maxSeqLen: maxSeqLen}, nil
}

// Name identifies the semantic mode.
func (o *ONNX) Name() string { return "onnx" }

// Close releases the session. The tokenizer needs no cleanup.
func (o *ONNX) Close() error {
	if o.session != nil {
		o.session.Destroy()
		o.session = nil
	}
	return nil
}

// EmbedCorpus encodes the query and each abstract independently. The model
// maps every text into the same fixed-dimension space, so no joint fitting
// is needed.
func (o *ONNX) EmbedCorpus(ctx context.Context, query string, abstracts []string) (Vector, []Vector, error) {
	if len(abstracts) == 0 {
		return Vector{}, nil, nil
	}

	queryVec, err := o.encode(Normalize(query))
	if err != nil {
		return Vector{}, nil, fmt.Errorf("embedding query: %w", err)
	}

	vecs := make([]Vector, len(abstracts))
	for i, a := range abstracts {
		select {
		case <-ctx.Done():
			return Vector{}, nil, ctx.Err()
		default:
		}
		v, err := o.encode(Normalize(a))
		if err != nil {
			return Vector{}, nil, fmt.Errorf("embedding candidate %d: %w", i, err)
		}
		vecs[i] = v
	}

	return queryVec, vecs, nil
}

// encode tokenizes one text, runs the model, and mean-pools the masked
// token embeddings into a normalized sentence vector.
func (o *ONNX) encode(text string) (Vector, error) {
	enc, err := o.tk.EncodeSingle(text, true)
	if err != nil {
		return Vector{}, fmt.Errorf("tokenizing: %w", err)
	}

	ids := enc.Ids
	mask := enc.AttentionMask
	typeIds := enc.TypeIds
	if len(ids) > o.maxSeqLen {
		ids = ids[:o.maxSeqLen]
		mask = mask[:o.maxSeqLen]
		typeIds = typeIds[:o.maxSeqLen]
	}
	if len(ids) == 0 {
		return Vector{}, nil
	}

	seqLen := int64(len(ids))
	shape := ort.NewShape(1, seqLen)

	inputIDs, err := ort.NewTensor(shape, toInt64(ids))
	if err != nil {
		return Vector{}, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer inputIDs.Destroy()

	attention, err := ort.NewTensor(shape, toInt64(mask))
	if err != nil {
		return Vector{}, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer attention.Destroy()

	tokenTypes, err := ort.NewTensor(shape, toInt64(typeIds))
	if err != nil {
		return Vector{}, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer tokenTypes.Destroy()

	outputs := []ort.Value{nil}
	if err := o.session.Run([]ort.Value{inputIDs, attention, tokenTypes}, outputs); err != nil {
		return Vector{}, fmt.Errorf("running model: %w", err)
	}
	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return Vector{}, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer hidden.Destroy()

	dims := hidden.GetShape()
	if len(dims) != 3 {
		return Vector{}, fmt.Errorf("unexpected output shape %v", dims)
	}
	hiddenDim := int(dims[2])
	data := hidden.GetData()

	// Mean pooling over non-padding tokens.
	pooled := make([]float32, hiddenDim)
	var count float32
	for t := 0; t < int(seqLen); t++ {
		if mask[t] == 0 {
			continue
		}
		row := data[t*hiddenDim : (t+1)*hiddenDim]
		for d, v := range row {
			pooled[d] += v
		}
		count++
	}
	if count > 0 {
		for d := range pooled {
			pooled[d] /= count
		}
	}

	return dense(pooled), nil
}

func toInt64(s []int) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = int64(v)
	}
	return out
}
