package anneal

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// Logger writes one JSONL event per consumed Step to a file, for offline
// analysis of an annealing run's trajectory. Grounded on the teacher's
// BLSLogger (internal/keycraft/bls_logger.go): same dual-purpose shape
// (an always-present elapsed-time/iteration envelope around an
// event-specific payload), narrowed to this spec's single Step type
// instead of BLS's per-phase event zoo.
type Logger struct {
	w         io.Writer
	startTime time.Time
	runID     string
}

// NewLogger wraps w as a JSONL sink. w may be nil, in which case LogStep
// and LogFinal are no-ops. Each Logger is stamped with a fresh run ID so
// JSONL files from concurrent or repeated runs can be told apart once
// merged.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, startTime: time.Now(), runID: uuid.NewString()}
}

// logEvent is one JSONL line: a Step's outcome plus run-relative timing.
type logEvent struct {
	Event      string  `json:"event"`
	RunID      string  `json:"run_id"`
	ElapsedMs  int64   `json:"elapsed_ms"`
	WorkerID   int     `json:"worker_id"`
	Iteration  int     `json:"iteration,omitempty"`
	Total      float64 `json:"total,omitempty"`
	Accepted   bool    `json:"accepted,omitempty"`
	Best       bool    `json:"best,omitempty"`
	LayoutText string  `json:"layout,omitempty"`
}

func (l *Logger) write(ev logEvent) {
	if l == nil || l.w == nil {
		return
	}
	ev.RunID = l.runID
	ev.ElapsedMs = time.Since(l.startTime).Milliseconds()
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = l.w.Write(data)
}

// LogStep records one accepted-or-rejected trial step from a worker.
func (l *Logger) LogStep(workerID int, step Step) {
	l.write(logEvent{
		Event:     "step",
		WorkerID:  workerID,
		Iteration: step.Iteration,
		Total:     step.Scores.GrandTotal(),
		Accepted:  step.Accepted,
		Best:      step.Best,
	})
}

// LogFinal records a worker's terminal best layout.
func (l *Logger) LogFinal(workerID int, best *kuehlmak.Layout, scores *kuehlmak.Scores) {
	l.write(logEvent{
		Event:      "final",
		WorkerID:   workerID,
		Total:      scores.GrandTotal(),
		LayoutText: best.String(),
	})
}
