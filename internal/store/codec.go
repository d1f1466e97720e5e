package store

import (
	"encoding/json"
	"fmt"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// Codec serializes filings into the opaque blobs stored in quarter
// columns. The codec is pluggable; a store always reads and writes
// with the codec it was opened with.
type Codec interface {
	Marshal(f *filing.Filing) ([]byte, error)
	Unmarshal(data []byte) (*filing.Filing, error)
}

// JSONCodec is the default blob codec. JSON keeps the stored blobs
// inspectable and makes round-trip equality exact, since every fact
// attribute is a string.
type JSONCodec struct{}

// Marshal encodes a filing as JSON.
func (JSONCodec) Marshal(f *filing.Filing) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal filing: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a filing blob.
func (JSONCodec) Unmarshal(data []byte) (*filing.Filing, error) {
	var f filing.Filing
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal filing: %w", err)
	}
	return &f, nil
}
