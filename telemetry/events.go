// Package telemetry provides world diagnostics, performance timing, event
// detection, CSV output and binary snapshots.
package telemetry

import (
	"fmt"
	"log/slog"
)

// EventType identifies a notable moment in the run.
type EventType string

const (
	EventExtinction      EventType = "extinction"
	EventMassCollapse    EventType = "mass_collapse"
	EventPredatorSurge   EventType = "predator_surge"
	EventSpeciationBurst EventType = "speciation_burst"
	EventDiversityCrash  EventType = "diversity_crash"
)

// Event is an automatically detected event, one row of events.csv.
type Event struct {
	Type        EventType `csv:"type" json:"type"`
	Frame       uint32    `csv:"frame" json:"frame"`
	Description string    `csv:"description" json:"description"`
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	slog.Info("event",
		"type", string(e.Type),
		"frame", e.Frame,
		"description", e.Description,
	)
}

// EventDetector compares each diagnostics sample against a rolling history.
type EventDetector struct {
	history []Diagnostics
	size    int
	idx     int
	full    bool
}

// NewEventDetector creates a detector remembering historySize samples.
func NewEventDetector(historySize int) *EventDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &EventDetector{
		history: make([]Diagnostics, historySize),
		size:    historySize,
	}
}

// Check analyzes d, sampled at frame, and returns any triggered events.
func (ed *EventDetector) Check(frame uint32, d Diagnostics) []Event {
	var events []Event
	hist := ed.window()

	if len(hist) > 0 {
		last := hist[len(hist)-1]
		if d.LiveCells == 0 && last.LiveCells > 0 {
			events = append(events, Event{
				Type:        EventExtinction,
				Frame:       frame,
				Description: fmt.Sprintf("All life gone (was %d live cells)", last.LiveCells),
			})
		}
	}

	if len(hist) >= 3 {
		var mass, pred, species, entropy float64
		for _, h := range hist {
			mass += h.TotalMass
			pred += h.Genome.PredatorFrac
			species += float64(h.Species)
			entropy += h.Entropy
		}
		n := float64(len(hist))
		mass /= n
		pred /= n
		species /= n
		entropy /= n

		if d.LiveCells > 0 && mass > 0 && d.TotalMass < mass*0.5 {
			events = append(events, Event{
				Type:        EventMassCollapse,
				Frame:       frame,
				Description: fmt.Sprintf("Mass %.0f fell below half the recent average %.0f", d.TotalMass, mass),
			})
		}
		if d.Genome.PredatorFrac > 0.1 && d.Genome.PredatorFrac > pred*2 {
			events = append(events, Event{
				Type:        EventPredatorSurge,
				Frame:       frame,
				Description: fmt.Sprintf("Predator share %.1f%% vs average %.1f%%", d.Genome.PredatorFrac*100, pred*100),
			})
		}
		if s := float64(d.Species); s >= species+3 && s >= species*1.5 {
			events = append(events, Event{
				Type:        EventSpeciationBurst,
				Frame:       frame,
				Description: fmt.Sprintf("%d species vs average %.1f", d.Species, species),
			})
		}
		if entropy > 1 && d.Entropy < entropy*0.5 {
			events = append(events, Event{
				Type:        EventDiversityCrash,
				Frame:       frame,
				Description: fmt.Sprintf("Entropy %.2f bits vs average %.2f", d.Entropy, entropy),
			})
		}
	}

	ed.push(d)
	return events
}

func (ed *EventDetector) push(d Diagnostics) {
	ed.history[ed.idx] = d
	ed.idx = (ed.idx + 1) % ed.size
	if ed.idx == 0 {
		ed.full = true
	}
}

// window returns the history oldest first.
func (ed *EventDetector) window() []Diagnostics {
	if !ed.full {
		return ed.history[:ed.idx]
	}
	out := make([]Diagnostics, 0, ed.size)
	out = append(out, ed.history[ed.idx:]...)
	return append(out, ed.history[:ed.idx]...)
}
