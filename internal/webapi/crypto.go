package webapi

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/google/uuid"
)

// getRandomValues fills at most 65536 bytes per call, per the Web Crypto
// quota.
const randomQuota = 65536

func installCrypto(vm *goja.Runtime) error {
	crypto := vm.NewObject()

	err := crypto.Set("getRandomValues", func(call goja.FunctionCall) goja.Value {
		buf, ok := bytesOf(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("getRandomValues requires an integer typed array"))
		}
		if len(buf) > randomQuota {
			panic(vm.NewTypeError("getRandomValues quota of %d bytes exceeded", randomQuota))
		}
		if _, err := rand.Read(buf); err != nil {
			panic(vm.NewGoError(err))
		}
		return call.Argument(0)
	})
	if err != nil {
		return err
	}

	err = crypto.Set("randomUUID", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(uuid.NewString())
	})
	if err != nil {
		return err
	}

	subtle := vm.NewObject()
	err = subtle.Set("digest", func(call goja.FunctionCall) goja.Value {
		promise, resolve, reject := vm.NewPromise()
		result := vm.ToValue(promise)

		data, ok := bytesOf(call.Argument(1))
		if !ok {
			reject(vm.NewTypeError("digest requires a BufferSource"))
			return result
		}
		sum, err := digest(algorithmName(call.Argument(0)), data)
		if err != nil {
			reject(vm.NewGoError(err))
			return result
		}
		resolve(vm.NewArrayBuffer(sum))
		return result
	})
	if err != nil {
		return err
	}
	if err := crypto.Set("subtle", subtle); err != nil {
		return err
	}

	return vm.Set("crypto", crypto)
}

// algorithmName accepts both the string and the { name } object form.
func algorithmName(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if n := obj.Get("name"); n != nil && !goja.IsUndefined(n) {
			return n.String()
		}
	}
	if v == nil {
		return ""
	}
	return v.String()
}

func digest(alg string, data []byte) ([]byte, error) {
	switch strings.ToUpper(alg) {
	case "SHA-1":
		sum := sha1.Sum(data)
		return sum[:], nil
	case "SHA-256":
		sum := sha256.Sum256(data)
		return sum[:], nil
	case "SHA-384":
		sum := sha512.Sum384(data)
		return sum[:], nil
	case "SHA-512":
		sum := sha512.Sum512(data)
		return sum[:], nil
	}
	return nil, fmt.Errorf("unsupported digest algorithm %q", alg)
}
