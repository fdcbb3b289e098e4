package message

import (
	"io"
	"net/url"
	"regexp"
)

// EntityType tags the representation of a request body or the
// representation a response body should be decoded to
type EntityType string

const (
	JSON        EntityType = "json"
	Text        EntityType = "text"
	BlobType    EntityType = "blob"
	Buffer      EntityType = "buffer"
	ArrayBuffer EntityType = "arraybuffer"
	DataURL     EntityType = "data-url"
	Form        EntityType = "form"
	Base64      EntityType = "base64"
	Stream      EntityType = "stream"
)

// binaryTypes are the entity types that are transferred as raw bytes
var binaryTypes = map[EntityType]bool{
	BlobType:    true,
	Buffer:      true,
	Stream:      true,
	ArrayBuffer: true,
	DataURL:     true,
	Base64:      true,
}

// IsBinary returns true if the entity type is transferred as raw bytes
func (t EntityType) IsBinary() bool {
	return binaryTypes[t]
}

// DataURLPattern matches data urls capturing the mime type, the
// optional base64 marker and the payload
var DataURLPattern = regexp.MustCompile(`^data:(.+?)(;base64)?,(.*)$`)

// Blob is binary data along with its mime type
type Blob struct {
	Data []byte
	Type string
}

// Bytes is binary data that is sent as is and that is
// tagged as an arraybuffer. Plain []byte values are tagged as buffer.
type Bytes []byte

// DetectEntityType infers the entity type from the value. The order of
// the checks matters: data urls are recognized before any other string,
// binary kinds before falling back to structured data.
func DetectEntityType(data interface{}) EntityType {
	switch v := data.(type) {
	case string:
		if DataURLPattern.MatchString(v) {
			return DataURL
		}
		return Text
	case Blob, *Blob:
		return BlobType
	case []byte:
		return Buffer
	case Bytes:
		return ArrayBuffer
	case url.Values:
		return Form
	case io.Reader:
		return Stream
	default:
		return JSON
	}
}
