package sim

// Metrics aggregates per-robot step and activity counters.
//
// robotSteps counts move phases that actually changed a robot's cell;
// robotTime counts every step a robot spent active, moving or not.
type Metrics struct {
	robotSteps []int
	robotTime  []int

	// Aggregates, refreshed once per step.
	TTotal int // sum of robotSteps
	TMax   int // max of robotSteps
	ETotal int // sum of robotTime
	EMax   int // max of robotTime

	Makespan       int
	AvailableCells int
}

func (m *Metrics) reset(capacity int) {
	m.robotSteps = make([]int, capacity)
	m.robotTime = make([]int, capacity)
	m.TTotal = 0
	m.TMax = 0
	m.ETotal = 0
	m.EMax = 0
	m.Makespan = 0
	m.AvailableCells = 0
}

func (m *Metrics) aggregate(steps, available int) {
	m.TTotal, m.TMax = sumMax(m.robotSteps)
	m.ETotal, m.EMax = sumMax(m.robotTime)
	m.Makespan = steps
	m.AvailableCells = available
}

func sumMax(xs []int) (sum, max int) {
	for _, x := range xs {
		sum += x
		if x > max {
			max = x
		}
	}
	return sum, max
}
