//go:build runtimecoro

package engine

func init() {
	backends = append(backends, backendCase{"runtimecoro", RuntimeCoro{}})
}
