// Helper functions that deal with atomic variables and their values
package atomics

import (
	"runtime"
	"sync/atomic"
)

// Subtracts value from the atomic source, clamping at zero. Success if already 0.
// Retries up to maxRetries times when the CAS loses to a concurrent writer.
func Subtract(source *atomic.Uint64, value uint64, maxRetries int) (success bool) {
	for i := 0; i < maxRetries; i++ {
		current := source.Load()
		if current == 0 {
			success = true
			return
		}

		newValue := uint64(0)
		if value < current {
			newValue = current - value
		}

		if source.CompareAndSwap(current, newValue) {
			success = true
			return
		}

		// Lost to another writer, let it finish
		runtime.Gosched()
	}
	return
}

// Raises the stored value to candidate if candidate is larger
func StoreMax(target *atomic.Uint64, candidate uint64) {
	for {
		current := target.Load()
		if candidate <= current {
			return
		}
		if target.CompareAndSwap(current, candidate) {
			return
		}
	}
}
