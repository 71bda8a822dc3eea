//go:build !(amd64 || 386 || s390x) || race

package arch

// IsTSO is false on weakly ordered architectures and under the race
// detector, forcing per-field atomic copies inside sequence windows.
const IsTSO = false
