// Package codec provides typed request decoding and response encoding for
// route handlers.
package codec

import (
	"io"
	"net/http"

	"github.com/Suhaibinator/SRegistrar/pkg/bodyparser"
	"github.com/bytedance/sonic"
)

// Codec decodes a request into a T and encodes a U as the response.
type Codec[T any, U any] interface {
	// Decode extracts and deserializes the request data.
	Decode(r *http.Request) (T, error)

	// Encode serializes resp and writes it to the response with status.
	Encode(w http.ResponseWriter, status int, resp U) error
}

// JSONCodec is a codec that uses JSON for marshaling and unmarshaling.
// Decoding reads the bytes captured by the body parser stage, falling back to
// the request body when the parser did not run.
type JSONCodec[T any, U any] struct{}

// NewJSONCodec creates a new JSONCodec instance for the specified types.
func NewJSONCodec[T any, U any]() *JSONCodec[T, U] {
	return &JSONCodec[T, U]{}
}

// Decode decodes the request body into a value of type T.
func (c *JSONCodec[T, U]) Decode(r *http.Request) (T, error) {
	if bodyparser.RawBody(r) != nil {
		return bodyparser.Decode[T](r)
	}

	var data T
	if r.Body == nil {
		return data, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return data, err
	}
	if len(body) == 0 {
		return data, nil
	}
	err = sonic.ConfigStd.Unmarshal(body, &data)
	return data, err
}

// Encode encodes a value of type U into the response.
func (c *JSONCodec[T, U]) Encode(w http.ResponseWriter, status int, resp U) error {
	body, err := sonic.ConfigStd.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
