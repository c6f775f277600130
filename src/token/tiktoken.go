package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenMeter counts tokens with the BPE encoding of an OpenAI model.
// The encoding file is fetched once and cached under TIKTOKEN_CACHE_DIR.
type TiktokenMeter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenMeter(modelName string) (*TiktokenMeter, error) {
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer for %s: %w", modelName, err)
	}
	return &TiktokenMeter{enc: enc}, nil
}

func (m *TiktokenMeter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(m.enc.Encode(text, nil, nil))
}
