package metrics

import "time"

const (
	NameTargetsHit   = "targets_hit"
	NameInBandRatio  = "in_band_ratio"
	NameTimeToTarget = "mean_time_to_target"
)

type TargetsHit struct {
	hits int
}

func NewTargetsHit() *TargetsHit {
	return &TargetsHit{}
}

func (h *TargetsHit) Name() string { return NameTargetsHit }

func (h *TargetsHit) Observe(o Observation) {
	if o.Retargeted {
		h.hits++
	}
}

func (h *TargetsHit) Value() float64 { return float64(h.hits) }

func (h *TargetsHit) Reset() { h.hits = 0 }

// InBandRatio is the fraction of session time spent inside the tolerance band.
type InBandRatio struct {
	inBand time.Duration
	total  time.Duration
}

func NewInBandRatio() *InBandRatio {
	return &InBandRatio{}
}

func (r *InBandRatio) Name() string { return NameInBandRatio }

func (r *InBandRatio) Observe(o Observation) {
	r.total += o.Elapsed
	if o.InBand {
		r.inBand += o.Elapsed
	}
}

func (r *InBandRatio) Value() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.inBand) / float64(r.total)
}

func (r *InBandRatio) Reset() {
	r.inBand = 0
	r.total = 0
}

// TimeToTarget averages the seconds between consecutive targets being met.
type TimeToTarget struct {
	current time.Duration
	sum     time.Duration
	count   int
}

func NewTimeToTarget() *TimeToTarget {
	return &TimeToTarget{}
}

func (t *TimeToTarget) Name() string { return NameTimeToTarget }

func (t *TimeToTarget) Observe(o Observation) {
	t.current += o.Elapsed
	if o.Retargeted {
		t.sum += t.current
		t.count++
		t.current = 0
	}
}

func (t *TimeToTarget) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return (t.sum / time.Duration(t.count)).Seconds()
}

func (t *TimeToTarget) Reset() {
	t.current = 0
	t.sum = 0
	t.count = 0
}
