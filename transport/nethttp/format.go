package nethttp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/message"
	pkgerrors "github.com/pkg/errors"
)

const mimeOctetStream = "application/octet-stream"

// ToFormat implementation of connector.Transport for Transport. Data
// urls and base64 entities are decoded into blobs, json entities are
// serialized and binary entities are left as they are.
func (t *Transport) ToFormat(msg *message.Message) error {
	kind := msg.EntityType()
	entity := msg.Entity()
	if len(kind) == 0 || entity == nil {
		return nil
	}

	mimeType := msg.MimeType()

	switch kind {
	case message.BlobType:
		if len(mimeType) == 0 {
			mimeType = blobType(entity)
		}

	case message.ArrayBuffer, message.Buffer, message.Form, message.Stream:

	case message.DataURL:
		s, _ := entity.(string)
		match := message.DataURLPattern.FindStringSubmatch(s)
		if match == nil {
			return errors.New(errors.ErrUnsupportedFormat,
				pkgerrors.New("entity is not a valid data url"))
		}

		if len(mimeType) == 0 {
			mimeType = match[1]
		}

		if len(match[2]) == 0 {
			data, err := url.PathUnescape(match[3])
			if err != nil {
				return errors.New(errors.ErrUnsupportedFormat, err)
			}

			kind = message.BlobType
			entity = message.Blob{Data: []byte(data), Type: mimeType}
			break
		}

		blob, err := decodeBase64(match[3], mimeType)
		if err != nil {
			return err
		}
		kind, entity = message.BlobType, blob

	case message.Base64:
		s, _ := entity.(string)
		blob, err := decodeBase64(s, mimeType)
		if err != nil {
			return err
		}
		kind, entity = message.BlobType, blob

	case message.JSON:
		if _, ok := entity.(string); !ok {
			p, err := json.Marshal(entity)
			if err != nil {
				return errors.New(errors.ErrUnsupportedFormat, err)
			}
			entity = string(p)
		}

	case message.Text:

	default:
		return errors.New(errors.ErrUnsupportedFormat,
			fmt.Errorf("Supported request format:%s", kind))
	}

	msg.SetEntity(entity, kind)
	if len(mimeType) > 0 {
		msg.SetMimeType(mimeType)
	}
	return nil
}

func blobType(entity interface{}) string {
	switch b := entity.(type) {
	case message.Blob:
		return b.Type
	case *message.Blob:
		return b.Type
	default:
		return ""
	}
}

func decodeBase64(s, mimeType string) (message.Blob, error) {
	p, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return message.Blob{}, errors.New(errors.ErrUnsupportedFormat, err)
	}

	return message.Blob{Data: p, Type: mimeType}, nil
}

// FromFormat implementation of connector.Transport for Transport
func (t *Transport) FromFormat(
	msg *message.Message,
	res *message.Response,
	kind message.EntityType,
) (interface{}, error) {
	p := entityBytes(res.Entity)
	if p == nil {
		return res.Entity, nil
	}

	switch kind {
	case message.JSON:
		// error bodies are never decoded into the caller's target
		if target := msg.ResponseTarget(); target != nil && msg.Spec().Accepts(res.Status) {
			if err := json.Unmarshal(p, target); err != nil {
				return nil, err
			}
			return target, nil
		}

		var v interface{}
		if err := json.Unmarshal(p, &v); err != nil {
			return nil, err
		}
		return v, nil

	case message.Text:
		return string(p), nil

	case message.DataURL:
		return "data:" + contentType(res) + ";base64," + base64.StdEncoding.EncodeToString(p), nil

	case message.Base64:
		return base64.StdEncoding.EncodeToString(p), nil

	case message.BlobType:
		return message.Blob{Data: p, Type: contentType(res)}, nil

	case message.ArrayBuffer:
		return message.Bytes(p), nil

	case message.Buffer:
		return p, nil

	case message.Stream:
		return bytes.NewReader(p), nil

	default:
		return res.Entity, nil
	}
}

func entityBytes(entity interface{}) []byte {
	switch v := entity.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		return nil
	}
}

func contentType(res *message.Response) string {
	if t := res.Header("content-type"); len(t) > 0 {
		return t
	}

	return mimeOctetStream
}
