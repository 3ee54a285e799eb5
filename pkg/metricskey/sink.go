package metricskey

import (
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/metrics"
)

// SinkInterval is the aggregation interval of the in-memory sink,
// the counters of a day of intervals are retained.
const SinkInterval = time.Hour

// NewInmemSink installs an in-memory sink as the global metrics sink,
// the counters are read back with Counters when the command exits.
func NewInmemSink() (*metrics.InmemSink, error) {
	sink := metrics.NewInmemSink(SinkInterval, 24*SinkInterval)
	_, err := metrics.NewGlobal(&metrics.Config{
		TimerGranularity: time.Millisecond,
		FilterDefault:    true,
	}, sink)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create metrics")
	}
	return sink, nil
}

// Counters returns the counters summed over the retained intervals,
// as "name;tag=value: sum" lines sorted by name.
func Counters(sink *metrics.InmemSink) []string {
	sums := map[string]float64{}
	for _, intv := range sink.Data() {
		intv.RLock()
		for k, v := range intv.Counters {
			sums[k] += v.Sum
		}
		intv.RUnlock()
	}

	lines := make([]string, 0, len(sums))
	for k, v := range sums {
		lines = append(lines, k+": "+strconv.FormatFloat(v, 'f', -1, 64))
	}
	slices.Sort(lines)
	return lines
}
