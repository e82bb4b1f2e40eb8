package workers

import "runtime"

// Count returns the number of workers for a task type. multiplier is 1.0 for
// CPU-bound work and 2.0 for I/O-bound work. A positive override wins over the
// computed value. limit caps the result; 0 means no cap.
func Count(override int, multiplier float64, limit int) int {
	workers := override
	if workers <= 0 {
		workers = int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU).
func ForCPU(override, limit int) int {
	return Count(override, 1.0, limit)
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU).
func ForIO(override, limit int) int {
	return Count(override, 2.0, limit)
}
