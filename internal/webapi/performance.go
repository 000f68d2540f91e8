package webapi

import (
	"time"

	"github.com/dop251/goja"
)

func installPerformance(vm *goja.Runtime) error {
	origin := time.Now()

	perf := vm.NewObject()
	err := perf.Set("now", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(float64(time.Since(origin)) / float64(time.Millisecond))
	})
	if err != nil {
		return err
	}
	if err := perf.Set("timeOrigin", float64(origin.UnixMilli())); err != nil {
		return err
	}
	return vm.Set("performance", perf)
}
