package router

import (
	"net/http"

	"github.com/Suhaibinator/SRegistrar/pkg/codec"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
)

// GenericHandler handles typed request data and returns typed response data.
type GenericHandler[T any, U any] func(r *http.Request, data T) (U, error)

// Typed adapts a GenericHandler into a route HandlerFunc. The request is
// decoded with c, a decode failure is a 400, and a successful response is
// encoded with status 200.
func Typed[T any, U any](c codec.Codec[T, U], handler GenericHandler[T, U]) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		data, err := c.Decode(r)
		if err != nil {
			return httperror.Wrap(http.StatusBadRequest, err, "Failed to decode request")
		}

		resp, err := handler(r, data)
		if err != nil {
			return err
		}

		if err := c.Encode(w, http.StatusOK, resp); err != nil {
			return httperror.Wrap(http.StatusInternalServerError, err, "Failed to encode response")
		}
		return nil
	}
}
