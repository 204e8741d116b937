package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

const metadataKey = "_metadata"

// Block is one author-ordered unit of a page body: a single-key mapping of
// block type to payload. The payload shape is not guaranteed to match Key.
type Block struct {
	Key     string
	Payload map[string]any
}

// UnmarshalJSON picks the first key, in document order, that is not
// _metadata and holds an object. A block with no such key, or one that is
// not an object at all, decodes with an empty Key and renders nothing.
func (b *Block) UnmarshalJSON(data []byte) error {
	*b = Block{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if b.Key != "" || key == metadataKey {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
			continue
		}
		b.Key = key
		b.Payload = payload
	}
	return nil
}

// Blocks decodes a components list element by element. Elements that fail
// to decode are dropped, and a list that is not an array decodes as empty.
type Blocks []Block

func (bs *Blocks) UnmarshalJSON(data []byte) error {
	*bs = nil
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}
	out := make(Blocks, 0, len(raws))
	for _, raw := range raws {
		var b Block
		if err := json.Unmarshal(raw, &b); err != nil {
			continue
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	if b.Key == "" {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any{b.Key: b.Payload})
}

// Has reports whether the payload carries key with a non-nil value.
func (b Block) Has(key string) bool {
	v, ok := b.Payload[key]
	return ok && v != nil
}
