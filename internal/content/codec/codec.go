package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/golang/snappy"
	"github.com/opencitizen/notifstore/internal/config"
)

// Codec turns typed channel payloads into storable bytes and back. The
// pipeline is serialize, sanitize, optionally compress. There is no format
// marker on the output: decode only succeeds when the decompress toggle
// matches the compress toggle that was active at write time.
type Codec struct {
	holder *config.CodecHolder
}

func New(holder *config.CodecHolder) *Codec {
	return &Codec{holder: holder}
}

func (c *Codec) Encode(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	text := Sanitize(string(raw))

	if c.holder.Current().Compress {
		return snappy.Encode(nil, []byte(text)), nil
	}
	return []byte(text), nil
}

func (c *Codec) Decode(data []byte, into any) error {
	if c.holder.Current().Decompress {
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return fmt.Errorf("decompress payload: %w", err)
		}
		data = decoded
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// safeCategories is the Unicode allow-list for stored payload text: letters,
// marks, numbers, punctuation, separators, format/surrogate exceptions and
// math/currency symbols. Anything else is a control character that breaks
// downstream JSON consumers.
var safeCategories = []*unicode.RangeTable{
	unicode.L, unicode.M, unicode.N, unicode.P, unicode.Z,
	unicode.Cf, unicode.Cs, unicode.Sm, unicode.Sc,
}

// Sanitize strips every rune outside the safe allow-list. Whitespace is
// always kept.
func Sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.In(r, safeCategories...) {
			return r
		}
		return -1
	}, text)
}
