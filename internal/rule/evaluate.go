package rule

import (
	"time"

	"github.com/deploymenttheory/go-flowforge/internal/hoststat"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
)

// Evaluator decides whether a rule holds against the current host state.
// Evaluate never fails: sampling errors make the affected leaf false.
type Evaluator struct {
	Sampler hoststat.Sampler
	Now     func() time.Time
	Exists  func(path string) bool
}

// NewEvaluator returns an evaluator reading the local host and clock
func NewEvaluator() *Evaluator {
	return &Evaluator{
		Sampler: hoststat.NewHost(),
		Now:     time.Now,
		Exists:  fsutil.PathExists,
	}
}

// Evaluate reports whether n holds. A nil node holds.
func (e *Evaluator) Evaluate(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case And:
		for _, child := range v.Children {
			if !e.Evaluate(child) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range v.Children {
			if e.Evaluate(child) {
				return true
			}
		}
		return false
	case Not:
		return !e.Evaluate(v.Child)
	case Leaf:
		return e.leaf(v)
	case Legacy:
		if !v.HasDisk {
			return true
		}
		return e.exceeds(KindDisk, v.Threshold)
	default:
		return true
	}
}

func (e *Evaluator) leaf(l Leaf) bool {
	if !l.Valid {
		return false
	}
	switch l.Kind {
	case KindDisk, KindCPU, KindMemory:
		return e.exceeds(l.Kind, l.Threshold)
	case KindFile:
		path, err := fsutil.ExpandTilde(l.Path)
		if err != nil {
			return false
		}
		return e.exists(path)
	case KindTime:
		hour := e.now().Hour()
		return hour >= l.FromHour && hour <= l.ToHour
	default:
		return true
	}
}

// exceeds samples the figure for kind and compares it against threshold
func (e *Evaluator) exceeds(kind Kind, threshold float64) bool {
	sampler := e.Sampler
	if sampler == nil {
		sampler = hoststat.NewHost()
	}

	var value float64
	var err error
	switch kind {
	case KindDisk:
		value, err = sampler.DiskUsedPercent()
	case KindCPU:
		value, err = sampler.CPUPercent()
	case KindMemory:
		value, err = sampler.MemoryUsedPercent()
	default:
		return false
	}
	if err != nil {
		return false
	}
	return value > threshold
}

func (e *Evaluator) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Evaluator) exists(path string) bool {
	if e.Exists == nil {
		return fsutil.PathExists(path)
	}
	return e.Exists(path)
}
