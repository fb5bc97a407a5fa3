package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/api/weberr"
)

// Errors is the terminal stop of every handler error: it logs the chain
// with the request id, responds with the error's declared body when it
// has one, and falls back to a bare 500 otherwise. Handlers past this
// point never write error responses themselves.
func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields := map[string]interface{}{
				"req_id":  ContextRequestID(ctx),
				"message": err,
			}
			if f, ok := weberr.Fields(err); ok {
				for k, v := range f {
					fields[k] = v
				}
			}

			log.WithFields(logrus.Fields(fields)).Error("ERROR")

			if body, code, ok := weberr.Response(err); ok {
				return web.Respond(ctx, w, body, code)
			}

			er := struct {
				Error string `json:"error"`
			}{
				http.StatusText(http.StatusInternalServerError),
			}
			return web.Respond(ctx, w, er, http.StatusInternalServerError)
		}
		return h
	}
	return m
}
