package vapi

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// maskedValue replaces anything that could identify a tenant or leak a
// credential in a shared screen or pasted payload.
const maskedValue = "************"

// uuidPattern matches the standard 8-4-4-4-12 UUID form the API uses for
// every resource id.
var uuidPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// MaskSecrets rewrites a raw API payload for safe display: values of
// secret-ish keys ("secret", or any key ending in "CallId" or "ProviderId")
// and every UUID anywhere in the document are replaced with a fixed mask.
// The result is re-indented. Payloads that fail to parse as JSON still get
// the UUID pass.
func MaskSecrets(raw []byte) []byte {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return uuidPattern.ReplaceAll(raw, []byte(maskedValue))
	}

	maskSecretValues(data)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return uuidPattern.ReplaceAll(raw, []byte(maskedValue))
	}

	return uuidPattern.ReplaceAll(bytes.TrimRight(buf.Bytes(), "\n"), []byte(maskedValue))
}

// maskSecretValues walks the decoded document and blanks values whose key
// marks them as sensitive. Nested containers under a masked key are replaced
// wholesale.
func maskSecretValues(obj any) {
	switch v := obj.(type) {
	case map[string]any:
		for key, value := range v {
			if isSecretKey(key) {
				v[key] = maskedValue
				continue
			}
			maskSecretValues(value)
		}
	case []any:
		for _, item := range v {
			maskSecretValues(item)
		}
	}
}

func isSecretKey(key string) bool {
	return strings.EqualFold(key, "secret") ||
		strings.HasSuffix(key, "CallId") ||
		strings.HasSuffix(key, "ProviderId")
}
