package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken counts tokens exactly using the model's BPE encoding. Exact
// counts and heuristic counts are not interchangeable: a cache populated
// with one will report different token totals than the other.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

var _ Estimator = (*Tiktoken)(nil)

// NewTiktoken returns an exact estimator for the given model. Unknown
// models are an error; callers typically fall back to Heuristic.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokens: no encoding for model %q: %w", model, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the exact number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
