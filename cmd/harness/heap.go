// Package harness accounts for the allocations a queue makes and can inject
// allocation failures into it.
package harness

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

type Heap struct {
	blocks int
	bytes  int

	failProbability int // percent
	forbidden       bool

	failures   int
	violations int

	rnd *rand.Rand
	log *logrus.Entry
}

func NewHeap(seed int64, log *logrus.Entry) *Heap {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Heap{
		rnd: rand.New(rand.NewSource(seed)),
		log: log.WithField("component", "heap"),
	}
}

// Alloc reserves one block of size bytes. It fails while allocation is
// forbidden or when the fault injector fires.
func (h *Heap) Alloc(size int) bool {
	if h.forbidden {
		h.violations++
		h.log.Warnf("Allocation of %d bytes attempted while disallowed", size)
		return false
	}

	if h.failProbability > 0 && h.rnd.Intn(100) < h.failProbability {
		h.failures++
		h.log.Debugf("Injected failure for allocation of %d bytes", size)
		return false
	}

	h.blocks++
	h.bytes += size
	return true
}

// Free releases one block of size bytes. Releasing more than was allocated is
// recorded as a violation.
func (h *Heap) Free(size int) {
	if h.forbidden {
		h.violations++
		h.log.Warnf("Release of %d bytes attempted while disallowed", size)
	}

	if h.blocks == 0 || h.bytes < size {
		h.violations++
		h.log.Warnf("Release of %d bytes that were never allocated", size)
		return
	}

	h.blocks--
	h.bytes -= size
}

// Forbid makes every following Alloc or Free a violation until Permit.
func (h *Heap) Forbid() { h.forbidden = true }

func (h *Heap) Permit() { h.forbidden = false }

// SetFailProbability sets the percent chance, clamped to [0, 100], that an
// Alloc fails.
func (h *Heap) SetFailProbability(percent int) {
	h.failProbability = max(0, min(100, percent))
}

func (h *Heap) FailProbability() int { return h.failProbability }

func (h *Heap) Allocated() int { return h.blocks }

func (h *Heap) Bytes() int { return h.bytes }

func (h *Heap) Failures() int { return h.failures }

func (h *Heap) Violations() int { return h.violations }
