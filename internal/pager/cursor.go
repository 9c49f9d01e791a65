package pager

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// EncodeCursor serializes a pagination context into an opaque URL-safe token
// so a browse position can continue across stateless HTTP requests.
func EncodeCursor(c Context) string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor restores a pagination context from an opaque token.
func DecodeCursor(cursor string) (Context, error) {
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Context{}, fmt.Errorf("decode cursor: %w", err)
	}
	var c Context
	if err := json.Unmarshal(decoded, &c); err != nil {
		return Context{}, fmt.Errorf("decode cursor: %w", err)
	}
	return c, nil
}
