package batch

// RecordNumberRangeFilter returns a Stage implementing the deprecated
// "filter by number" utility: a record whose Header.Number falls inside the
// inclusive [low, high] range is filtered out (dropped); every other
// record passes through unchanged. Included only for completeness — pin
// the direction with a test, it inverts easily.
func RecordNumberRangeFilter[T any](low, high int64) Stage {
	return FilterStage[T](func(rec Record[T]) bool {
		n := rec.Header.Number
		return !(n >= low && n <= high)
	})
}
