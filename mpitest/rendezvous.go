package mpitest

import "sync"

// rendezvous is a reusable meeting point for the members of one simulated
// communicator. Each round completes when all size members have arrived.
type rendezvous struct {
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	gen     uint64
	arrived int
	values  []float64
	result  []float64
}

func newRendezvous(size int) *rendezvous {
	r := &rendezvous{size: size, values: make([]float64, size)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// meet deposits v for rank and blocks until every member has arrived. It
// returns the values of the completed round in rank order.
func (r *rendezvous) meet(rank int, v float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	gen := r.gen
	r.values[rank] = v
	r.arrived++

	if r.arrived == r.size {
		r.result = append([]float64(nil), r.values...)
		r.arrived = 0
		r.gen++
		r.cond.Broadcast()
		return r.result
	}

	// the next round cannot complete without this member, so result still
	// belongs to our round when we wake
	for gen == r.gen {
		r.cond.Wait()
	}
	return r.result
}
