package webapi

import (
	"net/url"

	"github.com/dop251/goja"
)

func installURL(vm *goja.Runtime) error {
	ctor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		input := call.Argument(0).String()

		parsed, err := url.Parse(input)
		if err == nil && len(call.Arguments) > 1 && !goja.IsUndefined(call.Argument(1)) {
			var base *url.URL
			base, err = url.Parse(call.Argument(1).String())
			if err == nil {
				parsed = base.ResolveReference(parsed)
			}
		}
		if err != nil || !parsed.IsAbs() {
			panic(vm.NewTypeError("Invalid URL: %s", input))
		}

		populateURL(vm, call.This, parsed)
		return nil
	})
	if err := vm.Set("URL", ctor); err != nil {
		return err
	}

	// toString and toJSON live on the prototype like the native class.
	if obj, ok := ctor.(*goja.Object); ok {
		if proto, ok := obj.Get("prototype").(*goja.Object); ok {
			href := func(call goja.FunctionCall) goja.Value {
				if this, ok := call.This.(*goja.Object); ok {
					if v := this.Get("href"); v != nil {
						return v
					}
				}
				return vm.ToValue("")
			}
			if err := proto.Set("toString", href); err != nil {
				return err
			}
			if err := proto.Set("toJSON", href); err != nil {
				return err
			}
		}
	}

	return vm.Set("URLSearchParams", func(call goja.ConstructorCall) *goja.Object {
		query := ""
		if len(call.Arguments) > 0 && !goja.IsUndefined(call.Argument(0)) {
			query = call.Argument(0).String()
			if len(query) > 0 && query[0] == '?' {
				query = query[1:]
			}
		}
		values, _ := url.ParseQuery(query)
		bindSearchParams(vm, call.This, values)
		return nil
	})
}

func populateURL(vm *goja.Runtime, this *goja.Object, u *url.URL) {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	search := ""
	if u.RawQuery != "" {
		search = "?" + u.RawQuery
	}
	hash := ""
	if u.Fragment != "" {
		hash = "#" + u.Fragment
	}
	password, _ := u.User.Password()

	this.Set("href", u.String())
	this.Set("protocol", u.Scheme+":")
	this.Set("host", u.Host)
	this.Set("hostname", u.Hostname())
	this.Set("port", u.Port())
	this.Set("pathname", path)
	this.Set("search", search)
	this.Set("hash", hash)
	this.Set("origin", u.Scheme+"://"+u.Host)
	this.Set("username", u.User.Username())
	this.Set("password", password)

	params := vm.NewObject()
	bindSearchParams(vm, params, u.Query())
	this.Set("searchParams", params)
}

// bindSearchParams attaches query accessors backed by a shared url.Values.
func bindSearchParams(vm *goja.Runtime, this *goja.Object, values url.Values) {
	this.Set("get", func(call goja.FunctionCall) goja.Value {
		key := call.Argument(0).String()
		if !values.Has(key) {
			return goja.Null()
		}
		return vm.ToValue(values.Get(key))
	})
	this.Set("getAll", func(call goja.FunctionCall) goja.Value {
		all := values[call.Argument(0).String()]
		items := make([]interface{}, len(all))
		for i, v := range all {
			items[i] = v
		}
		return vm.NewArray(items...)
	})
	this.Set("has", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(values.Has(call.Argument(0).String()))
	})
	this.Set("set", func(call goja.FunctionCall) goja.Value {
		values.Set(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	this.Set("append", func(call goja.FunctionCall) goja.Value {
		values.Add(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	this.Set("delete", func(call goja.FunctionCall) goja.Value {
		values.Del(call.Argument(0).String())
		return goja.Undefined()
	})
	this.Set("toString", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(values.Encode())
	})
}
