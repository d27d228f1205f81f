// Package session holds the single weather session of the process: its
// state, the events that change it and the views rendered from it.
package session

import (
	"github.com/skycast/skycast/internal/weather"
)

// State is the whole application state. It is a value; Update returns a new one.
type State struct {
	// Generation is the number of the latest search issued; ModelGeneration
	// the number of the search that produced Model.
	Generation      uint64
	ModelGeneration uint64

	// Query is the query of the model on display; PendingQuery the one in flight.
	Query        string
	PendingQuery string

	Location    *weather.Location
	Model       *weather.Model
	SelectedDay int

	Loading   bool
	Searching bool

	// Err is the outcome of the latest search, nil on success.
	Err error
}

// Initial returns the state of a fresh session: the search form is open.
func Initial() State {
	return State{Searching: true}
}

// Event is a discrete state transition.
type Event interface {
	event()
}

// SearchStarted is emitted when a search is submitted.
type SearchStarted struct {
	Generation uint64
	Query      string
}

// SearchSucceeded carries a committed search result.
type SearchSucceeded struct {
	Generation uint64
	Result     *weather.Result
}

// SearchFailed carries a search error.
type SearchFailed struct {
	Generation uint64
	Err        error
}

// DaySelected selects a daily entry.
type DaySelected struct {
	Index int
}

// SearchOpened reopens the search form over the current model.
type SearchOpened struct{}

// AdviceResolved carries advisory text for the model of one generation.
type AdviceResolved struct {
	Generation uint64
	Advice     string
}

func (SearchStarted) event()   {}
func (SearchSucceeded) event() {}
func (SearchFailed) event()    {}
func (DaySelected) event()     {}
func (SearchOpened) event()    {}
func (AdviceResolved) event()  {}

// Update applies e to s. Search results tagged with a generation other than
// the latest are ignored, advice is only merged into the model it was
// requested for, and selections outside the daily list are ignored.
func Update(s State, e Event) State {
	switch e := e.(type) {
	case SearchStarted:
		s.Generation = e.Generation
		s.PendingQuery = e.Query
		s.Loading = true
		s.Err = nil

	case SearchSucceeded:
		if e.Generation != s.Generation || e.Result == nil || e.Result.Model == nil {
			return s
		}
		loc := e.Result.Location
		s.Location = &loc
		s.Model = e.Result.Model
		s.ModelGeneration = e.Generation
		s.Query = s.PendingQuery
		s.PendingQuery = ""
		s.SelectedDay = 0
		s.Loading = false
		s.Searching = false
		s.Err = nil

	case SearchFailed:
		if e.Generation != s.Generation {
			return s
		}
		s.PendingQuery = ""
		s.Loading = false
		s.Err = e.Err

	case DaySelected:
		if s.Model == nil || e.Index < 0 || e.Index >= len(s.Model.Daily) {
			return s
		}
		s.SelectedDay = e.Index

	case SearchOpened:
		s.Searching = true

	case AdviceResolved:
		if s.Model == nil || e.Generation != s.ModelGeneration {
			return s
		}
		s.Model = s.Model.WithAdvice(e.Advice)
	}
	return s
}
