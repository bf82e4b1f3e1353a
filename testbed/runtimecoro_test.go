//go:build runtimecoro

package testbed

import "github.com/wippyai/coro-runtime/engine"

func init() {
	backends["runtimecoro"] = engine.RuntimeCoro{}
}
