package cvtrack

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// Sequential updates every tracker in turn on the calling goroutine
	Sequential = 0
	// PerObject runs one worker per tracked object
	PerObject = -1
)

// LossPolicy selects the box recorded in a tracking history for a frame in
// which the object was lost
type LossPolicy int

const (
	// LossLastKnown records the last successfully tracked box
	LossLastKnown LossPolicy = iota
	// LossRaw records whatever box the single object tracker returned
	LossRaw
	// LossPredicted records a constant velocity prediction made from the
	// previous successfully tracked boxes
	LossPredicted
)

// String returns the policy name as used on the command line
func (p LossPolicy) String() string {
	switch p {
	case LossRaw:
		return "raw"
	case LossPredicted:
		return "predict"
	}

	return "last"
}

// ParseLossPolicy returns the policy with the given name
func ParseLossPolicy(name string) (LossPolicy, error) {

	for _, p := range []LossPolicy{LossLastKnown, LossRaw, LossPredicted} {
		if strings.EqualFold(name, p.String()) {
			return p, nil
		}
	}

	return LossLastKnown, fmt.Errorf("unknown loss policy %q, expected last, raw or predict", name)
}

// options are the settings shared by MultiTracker and ObjectTracker
type options struct {
	workers    int
	factory    TrackerFactory
	logger     zerolog.Logger
	lossPolicy LossPolicy
}

func defaultOptions() options {
	return options{
		workers:    PerObject,
		factory:    NewSingleTracker,
		logger:     zerolog.Nop(),
		lossPolicy: LossLastKnown,
	}
}

// Option configures a MultiTracker or ObjectTracker
type Option func(*options)

// WithWorkers sets the execution strategy of the per frame updates.  Use
// Sequential, PerObject or a positive number to bound the worker pool size.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < PerObject {
			n = PerObject
		}

		o.workers = n
	}
}

// WithFactory replaces the function used to construct single object
// trackers
func WithFactory(f TrackerFactory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithLogger sets the logger, by default nothing is logged
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLossPolicy sets which box is recorded in batch histories when an
// object is lost
func WithLossPolicy(p LossPolicy) Option {
	return func(o *options) {
		o.lossPolicy = p
	}
}

func applyOptions(opts []Option) options {

	o := defaultOptions()

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
