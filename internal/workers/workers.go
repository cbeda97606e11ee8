package workers

// Workers is an aggregate of background workers.
// It holds a collection of Worker implementations and runs them together.
type Workers struct {
	workers []Worker
}

// NewWorkers returns a Workers aggregate over the given workers.
// The order of the arguments is the order in which Run starts them.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts all registered workers by calling their Run methods.
//
// Note: Each worker's Run method is called synchronously in sequence.
// Workers that need to continue running in the background are expected
// to create their own goroutines inside Run.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
