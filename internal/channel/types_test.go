package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want ChannelType
		ok   bool
	}{
		{"telegram", ChannelTelegram, true},
		{" YouTube ", ChannelYouTube, true},
		{"manual", ChannelManual, true},
		{"eskiz_sms", ChannelEskizSMS, false},
		{"discord", "discord", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePlatform(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}

func TestIdentityLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ali Valiyev", Identity{DisplayName: " Ali Valiyev ", Username: "ali"}.Label())
	assert.Equal(t, "ali", Identity{Username: "ali"}.Label())
	assert.Equal(t, "", Identity{}.Label())
}

func TestDecodeConfigMap(t *testing.T) {
	t.Parallel()

	cfg, err := DecodeConfigMap([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.NotNil(t, cfg["a"])

	cfg, err = DecodeConfigMap([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, cfg)
	assert.NotNil(t, cfg)

	_, err = DecodeConfigMap([]byte(`[`))
	assert.Error(t, err)
}

func TestReadString(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"bot_token": 123.0,
		"empty":     " ",
		"name":      " acoustic ",
	}
	assert.Equal(t, "123", ReadString(raw, "bot_token"))
	assert.Equal(t, "acoustic", ReadString(raw, "empty", "name"))
	assert.Equal(t, "", ReadString(raw, "missing"))
}
