package cvtrack

import (
	"fmt"
	"strings"
)

// TrackerKind selects which single object tracker algorithm is constructed
// for every tracked object.  It is fixed for the lifetime of a tracking run.
type TrackerKind int

const (
	// KCF is the Kernelized Correlation Filter tracker
	KCF TrackerKind = iota
	// MOSSE is the Minimum Output Sum of Squared Error filter tracker
	MOSSE
	// CSRT is the Discriminative Correlation Filter with Channel and Spatial
	// Reliability tracker
	CSRT
)

// TrackerKinds lists all supported tracker algorithms
var TrackerKinds = []TrackerKind{KCF, MOSSE, CSRT}

// String returns the algorithm name
func (k TrackerKind) String() string {
	switch k {
	case KCF:
		return "KCF"
	case MOSSE:
		return "MOSSE"
	case CSRT:
		return "CSRT"
	}

	return fmt.Sprintf("TrackerKind(%d)", int(k))
}

// Valid reports whether k is one of the supported algorithms
func (k TrackerKind) Valid() bool {
	return k >= KCF && k <= CSRT
}

// ParseTrackerKind returns the TrackerKind for the given algorithm name,
// matching is case insensitive
func ParseTrackerKind(name string) (TrackerKind, error) {

	for _, k := range TrackerKinds {
		if strings.EqualFold(strings.TrimSpace(name), k.String()) {
			return k, nil
		}
	}

	return KCF, fmt.Errorf("unknown tracker algorithm %q, use KCF, MOSSE or CSRT", name)
}
