package service

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const (
	refParam        = "ref"
	maxJSONBodySize = 1 << 20
)

// ReferralTag returns the "ref" parameter of the request as a string. The
// query string wins over the form or JSON body. Non-string JSON scalars are
// converted to their text form and invalid UTF-8 is dropped. An absent or
// empty tag yields nil.
func ReferralTag(r *http.Request) *string {
	if v := normalizeParam(r.URL.Query().Get(refParam)); v != nil {
		return v
	}
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return nil
	}

	if isJSON(r.Header.Get("Content-Type")) {
		return jsonParam(r, refParam)
	}
	return normalizeParam(r.PostFormValue(refParam))
}

func jsonParam(r *http.Request, key string) *string {
	if r.Body == nil {
		return nil
	}

	var body map[string]any
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodySize))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil
	}

	switch v := body[key].(type) {
	case string:
		return normalizeParam(v)
	case json.Number:
		return normalizeParam(v.String())
	case bool:
		return normalizeParam(strconv.FormatBool(v))
	default:
		return nil
	}
}

func normalizeParam(v string) *string {
	v = strings.ToValidUTF8(v, "")
	if v == "" {
		return nil
	}
	return &v
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
