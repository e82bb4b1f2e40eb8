/*
Package workers sizes the goroutine pools used for thumbnail and duration
fan-out.

Go sets GOMAXPROCS from the container CPU quota, while runtime.NumCPU still
reports the host's cores. Counts are derived from GOMAXPROCS so a query on a
2-core container does not start 64 ffmpeg processes at once.

	// per-query fan-out: ffprobe and existence checks mostly wait on I/O
	n := workers.ForIO(cfg.FanoutWorkers, 32)

	// cmd/thumbwarm: ffmpeg decoding is CPU-bound
	n := workers.ForCPU(warmWorkers, 16)

A positive override (FANOUT_WORKERS, or WARM_WORKERS for thumbwarm) replaces the
computed value but is still capped by limit.
*/
package workers
