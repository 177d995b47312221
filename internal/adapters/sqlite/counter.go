package sqlite

import "fmt"

// Kernel counters are unsigned 64-bit but the columns are signed BIGINT,
// so counters are stored bit-cast. Values at or above 1<<63 come back
// negative in SQL and round-trip unchanged through counter.

func signed(v uint64) int64 {
	return int64(v)
}

type counter uint64

func (c *counter) Scan(src any) error {
	v, ok := src.(int64)
	if !ok {
		return fmt.Errorf("scan counter: unexpected %T", src)
	}
	*c = counter(v)
	return nil
}
