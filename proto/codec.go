package proto

import (
	"encoding/json"
	"mime"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// Negotiate picks the response encoding for an Accept header. JSON unless msgpack
// is named explicitly.
func Negotiate(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == ContentTypeMsgpack || mt == "application/x-msgpack" {
			return ContentTypeMsgpack
		}
	}
	return ContentTypeJSON
}

// IsMsgpack reports whether a Content-Type header names msgpack.
func IsMsgpack(contentType string) bool {
	return Negotiate(contentType) == ContentTypeMsgpack
}

// Marshal encodes v for the given content type.
func Marshal(contentType string, v any) ([]byte, error) {
	if contentType == ContentTypeMsgpack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

// Unmarshal decodes data for the given content type.
func Unmarshal(contentType string, data []byte, v any) error {
	if IsMsgpack(contentType) {
		return msgpack.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}
