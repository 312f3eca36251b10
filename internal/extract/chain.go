package extract

import (
	"github.com/rs/zerolog/log"
)

// strategy is one attempt at recovering a field value from a snapshot.
// Strategies are ordered by confidence: structured data first, then
// selectors, then text-pattern mining over the full rendered text.
type strategy[T any] struct {
	name string
	run  func(*Snapshot) (T, bool)
}

// firstPlausible runs the strategies in order and returns the first
// value that the plausibility gate accepts, or the zero value when
// every strategy misses. A panic inside a strategy is recovered and
// treated as a miss: a single malformed pattern match must never take
// down the rest of the record.
func firstPlausible[T any](field string, snap *Snapshot, plausible func(T) bool, strategies []strategy[T]) T {
	var zero T
	for _, st := range strategies {
		v, ok := runStrategy(field, st, snap)
		if !ok {
			continue
		}
		if plausible != nil && !plausible(v) {
			log.Debug().
				Str("field", field).
				Str("strategy", st.name).
				Msg("Value rejected by plausibility gate")
			continue
		}
		log.Debug().
			Str("field", field).
			Str("strategy", st.name).
			Msg("Field extracted")
		return v
	}
	return zero
}

func runStrategy[T any](field string, st strategy[T], snap *Snapshot) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("field", field).
				Str("strategy", st.name).
				Any("panic", r).
				Msg("Strategy panicked, skipping")
			ok = false
		}
	}()
	return st.run(snap)
}
