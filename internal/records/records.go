// Package records keeps the measurements entered during a signed-in session.
// It backs the Datos, Camera, Medidas and Informes screens.
package records

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidMeasurement = errors.New("records: measurement needs a name")
	ErrNonFiniteValue     = errors.New("records: value must be a finite number")
)

type Source string

const (
	SourceManual Source = "manual"
	SourceCamera Source = "camera"
)

type Measurement struct {
	ID     string
	Name   string
	Value  float64
	Unit   string
	Source Source
	At     time.Time
}

// Summary aggregates measurements that share a name.
type Summary struct {
	Name  string
	Unit  string
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

type Log struct {
	mu    sync.RWMutex
	items []Measurement
	now   func() time.Time
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

// Add records m, filling in ID and timestamp.
func (l *Log) Add(m Measurement) (Measurement, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return Measurement{}, ErrInvalidMeasurement
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return Measurement{}, ErrNonFiniteValue
	}
	if m.Source == "" {
		m.Source = SourceManual
	}
	m.ID = uuid.NewString()

	l.mu.Lock()
	m.At = l.now()
	l.items = append(l.items, m)
	l.mu.Unlock()
	return m, nil
}

// List returns a copy, newest first.
func (l *Log) List() []Measurement {
	l.mu.RLock()
	out := make([]Measurement, len(l.items))
	copy(out, l.items)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out
}

// Remove deletes the measurement with id.
func (l *Log) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, m := range l.items {
		if m.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of measurements.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Summaries groups measurements by name, sorted by name.
func (l *Log) Summaries() []Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	byName := make(map[string]*Summary)
	var names []string
	for _, m := range l.items {
		s, ok := byName[m.Name]
		if !ok {
			s = &Summary{Name: m.Name, Unit: m.Unit, Min: m.Value, Max: m.Value}
			byName[m.Name] = s
			names = append(names, m.Name)
		}
		s.Count++
		s.Min = min(s.Min, m.Value)
		s.Max = max(s.Max, m.Value)
		s.Mean += (m.Value - s.Mean) / float64(s.Count)
	}

	sort.Strings(names)
	out := make([]Summary, 0, len(names))
	for _, n := range names {
		out = append(out, *byName[n])
	}
	return out
}

// Markdown renders the summaries as a report.
func (l *Log) Markdown() string {
	sums := l.Summaries()
	var b strings.Builder
	b.WriteString("# Informe de medidas\n\n")
	if len(sums) == 0 {
		b.WriteString("_Sin medidas registradas._\n")
		return b.String()
	}
	b.WriteString("| Medida | Unidad | N | Mín | Máx | Media |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|\n")
	for _, s := range sums {
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %.2f | %.2f |\n",
			s.Name, s.Unit, s.Count, s.Min, s.Max, s.Mean)
	}
	return b.String()
}
