package router

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"

	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, errorx.New(errorx.BadRequest, "Method not allowed"))
			return
		}

		ctx := router.ctx
		var err error
		for _, m := range router.before {
			ctx, err = m(ctx, r)
			if err != nil {
				writeError(w, err)
				return
			}
		}

		var req Request
		if err := readRequest(r, method, &req); err != nil {
			writeError(w, errorx.New(errorx.BadRequest, "Cannot parse request"))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, successResponse{Code: 0, Data: resp})
	}
}

func readRequest(r *http.Request, method string, req any) error {
	if method == http.MethodPost {
		if r.Body == nil || r.ContentLength == 0 {
			return nil
		}

		return json.NewDecoder(r.Body).Decode(req)
	}

	v := reflect.ValueOf(req).Elem()
	for i := 0; i < v.NumField(); i++ {
		name := v.Type().Field(i).Tag.Get("json")
		queryVal := r.URL.Query().Get(name)
		if queryVal == "" {
			continue
		}

		switch v.Field(i).Kind() {
		case reflect.String:
			v.Field(i).SetString(queryVal)
		case reflect.Int, reflect.Int64:
			val, err := strconv.ParseInt(queryVal, 10, 64)
			if err != nil {
				return err
			}
			v.Field(i).SetInt(val)
		case reflect.Float64:
			val, err := strconv.ParseFloat(queryVal, 64)
			if err != nil {
				return err
			}
			v.Field(i).SetFloat(val)
		case reflect.Bool:
			val, err := strconv.ParseBool(queryVal)
			if err != nil {
				return err
			}
			v.Field(i).SetBool(val)
		}
	}

	return nil
}

// LoggerMiddleware logs every request with the context logger.
func LoggerMiddleware() MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		xcontext.Logger(ctx).Debugf("%s %s", r.Method, r.URL.Path)
		return ctx, nil
	}
}
