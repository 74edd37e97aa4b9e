package ledger

import "fmt"

// Chain selects one of the two independent ledger partitions. Records written
// on one chain are invisible to the other; retrieval must use the same
// selector as the original upload.
type Chain string

const (
	// ChainHot is the frequently-accessed partition.
	ChainHot Chain = "hot"
	// ChainCold is the archival partition.
	ChainCold Chain = "cold"
)

// ParseChain validates a caller-supplied chain selector. There is no default:
// an empty or unknown value is an error, the caller decides what to do with it.
func ParseChain(s string) (Chain, error) {
	switch Chain(s) {
	case ChainHot:
		return ChainHot, nil
	case ChainCold:
		return ChainCold, nil
	}
	return "", fmt.Errorf("invalid chain %q (must be %q or %q)", s, ChainHot, ChainCold)
}

func (c Chain) String() string { return string(c) }
