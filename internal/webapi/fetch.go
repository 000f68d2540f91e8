package webapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dop251/goja"
	"github.com/go-resty/resty/v2"
)

// installFetch binds a synchronous-resolution fetch: the request runs to
// completion inside the call and the returned promise is already settled.
func installFetch(vm *goja.Runtime, client *resty.Client) error {
	return vm.Set("fetch", func(call goja.FunctionCall) goja.Value {
		promise, resolve, reject := vm.NewPromise()
		result := vm.ToValue(promise)

		if len(call.Arguments) == 0 {
			reject(vm.NewTypeError("fetch requires a resource argument"))
			return result
		}
		target := call.Argument(0).String()

		method := http.MethodGet
		var body string
		req := client.R()
		if opts, ok := call.Argument(1).(*goja.Object); ok {
			if v := opts.Get("method"); v != nil && !goja.IsUndefined(v) {
				method = strings.ToUpper(v.String())
			}
			if v := opts.Get("body"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
				body = v.String()
			}
			if headers, ok := opts.Get("headers").(*goja.Object); ok {
				for _, key := range headers.Keys() {
					req.SetHeader(key, headers.Get(key).String())
				}
			}
		}
		if body != "" {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, target)
		if err != nil {
			reject(vm.NewGoError(err))
			return result
		}
		resolve(responseValue(vm, resp))
		return result
	})
}

// responseValue builds the Response-like object handed to sandboxed code.
func responseValue(vm *goja.Runtime, resp *resty.Response) *goja.Object {
	body := append([]byte(nil), resp.Body()...)

	o := vm.NewObject()
	o.Set("ok", resp.StatusCode() >= 200 && resp.StatusCode() <= 299)
	o.Set("status", resp.StatusCode())
	o.Set("statusText", http.StatusText(resp.StatusCode()))
	o.Set("url", resp.Request.URL)

	header := resp.Header()
	headers := vm.NewObject()
	headers.Set("get", func(call goja.FunctionCall) goja.Value {
		v := header.Get(call.Argument(0).String())
		if v == "" {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	headers.Set("has", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(header.Get(call.Argument(0).String()) != "")
	})
	o.Set("headers", headers)

	o.Set("text", func(goja.FunctionCall) goja.Value {
		p, res, _ := vm.NewPromise()
		res(string(body))
		return vm.ToValue(p)
	})
	o.Set("json", func(goja.FunctionCall) goja.Value {
		p, res, rej := vm.NewPromise()
		var out interface{}
		if err := json.Unmarshal(body, &out); err != nil {
			rej(vm.NewGoError(err))
		} else {
			res(out)
		}
		return vm.ToValue(p)
	})
	o.Set("arrayBuffer", func(goja.FunctionCall) goja.Value {
		p, res, _ := vm.NewPromise()
		res(vm.NewArrayBuffer(append([]byte(nil), body...)))
		return vm.ToValue(p)
	})
	return o
}
