//go:build (amd64 || 386 || s390x) && !race

package arch

// IsTSO reports a total-store-order memory model. Inside a stable
// sequence window a plain typed copy cannot become visible out of
// order, so the guarded cells may use it.
const IsTSO = true
