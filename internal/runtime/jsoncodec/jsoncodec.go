package jsoncodec

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// ConfigStd sorts map keys, which keeps rendered tables and diagnostics stable
// across builds.
var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return defaultConfig.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}

// Render returns a compact JSON rendering of v for error messages. Values that
// cannot be encoded fall back to their Go syntax representation.
func Render(v any) string {
	data, err := defaultConfig.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}
