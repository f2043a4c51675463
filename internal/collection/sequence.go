package collection

import "sync/atomic"

// Sequencer 为刷新请求分配递增序号。
// 请求完成时只有最新序号的结果会被应用，过期结果直接丢弃。
type Sequencer struct {
	latest atomic.Uint64
}

func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

func (s *Sequencer) IsLatest(n uint64) bool {
	return s.latest.Load() == n
}
