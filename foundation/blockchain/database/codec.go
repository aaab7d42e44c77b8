package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeBlock decodes the JSON wire form of a block. Unknown fields are
// rejected so the fields covered by the hash can't be confused.
func DecodeBlock(r io.Reader) (Block, error) {
	var block Block
	if err := strict(r, &block); err != nil {
		return Block{}, fmt.Errorf("decoding block: %w", err)
	}

	return normalize(block), nil
}

// DecodeChain decodes the JSON wire form of a chain.
func DecodeChain(r io.Reader) ([]Block, error) {
	var chain []Block
	if err := strict(r, &chain); err != nil {
		return nil, fmt.Errorf("decoding chain: %w", err)
	}

	for i := range chain {
		chain[i] = normalize(chain[i])
	}

	return chain, nil
}

// DecodeSubmissions decodes the JSON wire form of a list of submissions.
func DecodeSubmissions(r io.Reader) ([]Submission, error) {
	subs := []Submission{}
	if err := strict(r, &subs); err != nil {
		return nil, fmt.Errorf("decoding submissions: %w", err)
	}

	return subs, nil
}

// EncodeChain returns the JSON wire form of a chain.
func EncodeChain(chain []Block) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(chain); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// =============================================================================

func strict(r io.Reader, v any) error {
	d := json.NewDecoder(r)
	d.DisallowUnknownFields()

	return d.Decode(v)
}

// normalize makes sure a block always carries a non-nil submission list.
func normalize(block Block) Block {
	if block.Submissions == nil {
		block.Submissions = []Submission{}
	}
	return block
}
