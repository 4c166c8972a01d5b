package orchestration

import (
	"sync"
	"time"
)

// Metrics is a snapshot of per-turn latency averages and the error count
// since the session started.
type Metrics struct {
	Turns  int
	Errors int

	AvgTranscription time.Duration
	AvgThinking      time.Duration
	AvgSynthesis     time.Duration
	AvgTurn          time.Duration
}

// turnMetrics accumulates running latency averages. Stage durations are
// recorded once per completed turn; degraded turns count only toward the
// error total.
type turnMetrics struct {
	mu sync.Mutex

	turns  int
	errors int

	transcriptionTotal time.Duration
	transcriptionCount int
	thinkingTotal      time.Duration
	thinkingCount      int
	synthesisTotal     time.Duration
	synthesisCount     int
	turnTotal          time.Duration
}

// turnSample carries the stage durations measured for one turn. Zero values
// mean the stage did not run.
type turnSample struct {
	transcription time.Duration
	thinking      time.Duration
	synthesis     time.Duration
	total         time.Duration
}

func (m *turnMetrics) record(sample turnSample) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns++
	m.turnTotal += sample.total
	if sample.transcription > 0 {
		m.transcriptionTotal += sample.transcription
		m.transcriptionCount++
	}
	if sample.thinking > 0 {
		m.thinkingTotal += sample.thinking
		m.thinkingCount++
	}
	if sample.synthesis > 0 {
		m.synthesisTotal += sample.synthesis
		m.synthesisCount++
	}
}

func (m *turnMetrics) recordError() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

func (m *turnMetrics) snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := Metrics{Turns: m.turns, Errors: m.errors}
	if m.transcriptionCount > 0 {
		snapshot.AvgTranscription = m.transcriptionTotal / time.Duration(m.transcriptionCount)
	}
	if m.thinkingCount > 0 {
		snapshot.AvgThinking = m.thinkingTotal / time.Duration(m.thinkingCount)
	}
	if m.synthesisCount > 0 {
		snapshot.AvgSynthesis = m.synthesisTotal / time.Duration(m.synthesisCount)
	}
	if m.turns > 0 {
		snapshot.AvgTurn = m.turnTotal / time.Duration(m.turns)
	}
	return snapshot
}
