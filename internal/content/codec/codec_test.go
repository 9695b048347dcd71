package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencitizen/notifstore/internal/config"
)

func newTestCodec(compress, decompress bool) *Codec {
	holder := &config.CodecHolder{}
	holder.Set(config.CodecConfig{Compress: compress, Decompress: decompress})
	return New(holder)
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "Votre dossier est accepté", "Votre dossier est accepté"},
		{"control chars stripped", "avant\x00après\x07", "avantaprès"},
		{"whitespace kept", "ligne 1\nligne 2\ttab", "ligne 1\nligne 2\ttab"},
		{"currency and math kept", "montant: 12,50 € (≤ 20)", "montant: 12,50 € (≤ 20)"},
		{"other symbols stripped", "Dossier n°42 ©", "Dossier n42 "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

type testPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

func TestRoundTrip_Uncompressed(t *testing.T) {
	c := newTestCodec(false, false)

	in := testPayload{
		Recipient: "citizen@example.org",
		Subject:   "Dossier nº42",
		Message:   "Votre demande a été acceptée",
	}
	data, err := c.Encode(in)
	require.NoError(t, err)

	var out testPayload
	require.NoError(t, c.Decode(data, &out))
	assert.Equal(t, in, out)
}

func TestRoundTrip_Compressed(t *testing.T) {
	c := newTestCodec(true, true)

	in := testPayload{
		Recipient: "citizen@example.org",
		Message:   "Texte assez long pour que la compression serve à quelque chose, répété. Texte assez long pour que la compression serve à quelque chose.",
	}
	data, err := c.Encode(in)
	require.NoError(t, err)

	var out testPayload
	require.NoError(t, c.Decode(data, &out))
	assert.Equal(t, in, out)
}

func TestDecode_ToggleMismatchFails(t *testing.T) {
	writer := newTestCodec(true, true)
	reader := newTestCodec(false, false)

	data, err := writer.Encode(testPayload{Message: "compressé"})
	require.NoError(t, err)

	var out testPayload
	assert.Error(t, reader.Decode(data, &out))
}
