//go:build !runtimecoro

package engine

// rcCell is the runtime-coroutine backend's cell. In the default build the
// backend is gated out (see runtimecoro.go), so only the type name is needed
// for Context's backend slot.
type rcCell struct{}
