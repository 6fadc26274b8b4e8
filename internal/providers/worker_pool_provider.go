package providers

import (
	"github.com/alitto/pond/v2"
	"zoblogs/internal/structures"
)

const defaultPoolSize = 8

// NewWorkerPool creates the pool shared by upstream fan-out reads. The
// returned cleanup waits for running tasks.
func NewWorkerPool(conf *structures.Config) (pond.Pool, func()) {
	size := conf.Reader.Concurrency
	if size <= 0 {
		size = defaultPoolSize
	}
	pool := pond.NewPool(size)
	return pool, pool.StopAndWait
}
