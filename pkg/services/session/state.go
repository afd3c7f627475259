package session

import (
	"sync"

	"github.com/nutri-tools/nutri/pkg/models/domain"
)

// State is the explicit application state previously scattered across ad-hoc
// flags: what analysis and recipe are currently shown, and whether a request
// is in flight.
type State struct {
	CurrentAnalysis *domain.AnalysisRecord
	CurrentRecipe   *domain.Recipe
	InFlight        bool
	LastError       string
}

// Event is a state transition input. Side-effecting code (the pipeline) stays
// outside Reduce and injects its outcomes as events.
type Event interface {
	isEvent()
}

type AnalysisStarted struct{}

type AnalysisSucceeded struct {
	Record domain.AnalysisRecord
}

type AnalysisFailed struct {
	Reason string
}

type RecipeSucceeded struct {
	Recipe domain.Recipe
}

type RecordRemoved struct {
	ID string
}

type HistoryCleared struct{}

func (AnalysisStarted) isEvent()   {}
func (AnalysisSucceeded) isEvent() {}
func (AnalysisFailed) isEvent()    {}
func (RecipeSucceeded) isEvent()   {}
func (RecordRemoved) isEvent()     {}
func (HistoryCleared) isEvent()    {}

// Reduce is the pure transition function (state, event) -> state.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case AnalysisStarted:
		s.InFlight = true
		s.LastError = ""
	case AnalysisSucceeded:
		rec := ev.Record
		s.CurrentAnalysis = &rec
		s.InFlight = false
		s.LastError = ""
	case AnalysisFailed:
		s.InFlight = false
		s.LastError = ev.Reason
	case RecipeSucceeded:
		recipe := ev.Recipe
		s.CurrentRecipe = &recipe
		s.InFlight = false
		s.LastError = ""
	case RecordRemoved:
		if s.CurrentAnalysis != nil && s.CurrentAnalysis.ID == ev.ID {
			s.CurrentAnalysis = nil
		}
	case HistoryCleared:
		s.CurrentAnalysis = nil
	}
	return s
}

// Manager serializes event application over a single State.
type Manager struct {
	mu    sync.RWMutex
	state State
}

func NewManager() *Manager {
	return &Manager{}
}

// Apply runs the reducer and returns the new state.
func (m *Manager) Apply(e Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Reduce(m.state, e)
	return m.state
}

// Current returns the state as of the last applied event.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}
