package system

import "sort"

// Runner executes systems in phase order. Systems sharing a phase run in
// registration order.
type Runner struct {
	systems []System
	sorted  bool
	// Observe, when set, wraps every system call (tracing, metrics).
	Observe func(s System, run func())
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(ticks uint) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.run(s, ticks)
	}
}

func (r *Runner) run(s System, ticks uint) {
	if r.Observe == nil {
		s.Update(ticks)
		return
	}
	r.Observe(s, func() { s.Update(ticks) })
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
