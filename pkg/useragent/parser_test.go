package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParser_Parse(t *testing.T) {
	p, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name       string
		ua         string
		wantDevice string
		wantOS     string
	}{
		{
			name:       "desktop chrome",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			wantDevice: DeviceDesktop,
			wantOS:     "Windows",
		},
		{
			name:       "iphone",
			ua:         "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			wantDevice: DeviceMobile,
			wantOS:     "iOS",
		},
		{
			name:       "ipad",
			ua:         "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			wantDevice: DeviceTablet,
			wantOS:     "iOS",
		},
		{
			name:       "googlebot",
			ua:         "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			wantDevice: DeviceBot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := p.Parse(tt.ua)
			assert.Equal(t, tt.wantDevice, info.DeviceType)
			if tt.wantOS != "" {
				assert.Equal(t, tt.wantOS, info.OS)
			}
			assert.NotEmpty(t, info.Browser)
		})
	}
}

func TestParser_EmptyUserAgent(t *testing.T) {
	p, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	info := p.Parse("")
	assert.Equal(t, DeviceInfo{DeviceType: Unknown, Browser: Unknown, OS: Unknown}, info)
}

func TestNewParser_MissingFile(t *testing.T) {
	_, err := NewParser("/nonexistent/regexes.yaml", zap.NewNop())
	assert.Error(t, err)
}
