package service

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferralTag(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		want        *string
	}{
		{
			name:   "query string",
			method: http.MethodGet,
			target: "/track/x?ref=newsletter",
			want:   strPtr("newsletter"),
		},
		{
			name:   "absent",
			method: http.MethodGet,
			target: "/track/x",
			want:   nil,
		},
		{
			name:   "empty value",
			method: http.MethodGet,
			target: "/track/x?ref=",
			want:   nil,
		},
		{
			name:        "form body",
			method:      http.MethodPost,
			target:      "/track/x",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"ref": {"footer"}}.Encode(),
			want:        strPtr("footer"),
		},
		{
			name:        "query wins over form",
			method:      http.MethodPost,
			target:      "/track/x?ref=query",
			contentType: "application/x-www-form-urlencoded",
			body:        "ref=form",
			want:        strPtr("query"),
		},
		{
			name:        "json string",
			method:      http.MethodPost,
			target:      "/api/track/x",
			contentType: "application/json",
			body:        `{"ref": "campaign"}`,
			want:        strPtr("campaign"),
		},
		{
			name:        "json integer",
			method:      http.MethodPost,
			target:      "/api/track/x",
			contentType: "application/json; charset=utf-8",
			body:        `{"ref": 12345}`,
			want:        strPtr("12345"),
		},
		{
			name:        "json bool",
			method:      http.MethodPost,
			target:      "/api/track/x",
			contentType: "application/json",
			body:        `{"ref": true}`,
			want:        strPtr("true"),
		},
		{
			name:        "json object ignored",
			method:      http.MethodPost,
			target:      "/api/track/x",
			contentType: "application/json",
			body:        `{"ref": {"a": 1}}`,
			want:        nil,
		},
		{
			name:        "malformed json",
			method:      http.MethodPost,
			target:      "/api/track/x",
			contentType: "application/json",
			body:        `{"ref":`,
			want:        nil,
		},
		{
			name:   "invalid utf-8 dropped",
			method: http.MethodGet,
			target: "/track/x?ref=abc%FF%FEdef",
			want:   strPtr("abcdef"),
		},
		{
			name:   "only invalid bytes",
			method: http.MethodGet,
			target: "/track/x?ref=%FF",
			want:   nil,
		},
		{
			name:        "GET body is ignored",
			method:      http.MethodGet,
			target:      "/track/x",
			contentType: "application/x-www-form-urlencoded",
			body:        "ref=ignored",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			got := ReferralTag(req)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}
