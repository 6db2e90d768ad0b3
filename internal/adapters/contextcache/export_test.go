package contextcache

import "time"

// SetNow overrides the memory cache clock for tests.
func (m *Memory) SetNow(now func() time.Time) {
	m.setNow(now)
}
