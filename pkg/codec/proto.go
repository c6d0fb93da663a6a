package codec

import (
	"io"
	"net/http"

	"google.golang.org/protobuf/proto"
)

// ProtoContentType is the media type written by ProtoCodec.
const ProtoContentType = "application/x-protobuf"

// ProtoCodec is a codec that uses Protocol Buffers for marshaling and unmarshaling.
type ProtoCodec[T proto.Message, U proto.Message] struct {
	newRequest func() T
}

// NewProtoCodec creates a new ProtoCodec. newRequest returns an empty
// request message to decode into.
func NewProtoCodec[T proto.Message, U proto.Message](newRequest func() T) *ProtoCodec[T, U] {
	return &ProtoCodec[T, U]{newRequest: newRequest}
}

// Decode decodes the request body into a new T.
func (c *ProtoCodec[T, U]) Decode(r *http.Request) (T, error) {
	msg := c.newRequest()
	if r.Body == nil {
		return msg, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return msg, err
	}

	err = proto.Unmarshal(body, msg)
	return msg, err
}

// Encode encodes resp in the Protocol Buffers wire format.
func (c *ProtoCodec[T, U]) Encode(w http.ResponseWriter, status int, resp U) error {
	body, err := proto.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", ProtoContentType)
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
