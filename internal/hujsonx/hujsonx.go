// Package hujsonx contains github.com/tailscale/hujson extensions.
package hujsonx

import (
	"encoding/json"

	"github.com/tailscale/hujson"
)

// Unmarshal is like json.Unmarshal except that the input may contain
// comments and trailing commas (i.e., it is "human JSON").
func Unmarshal(data []byte, v any) error {
	value, err := hujson.Parse(data)
	if err != nil {
		return err
	}
	value.Standardize()
	return json.Unmarshal(value.Pack(), v)
}
