package dtbin

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// SeriesInfoPrefix starts the descriptor records of a group.
const SeriesInfoPrefix = "SeqInfo_"

// Series tracks the time steps of one time-varying variable. Step i is
// stored under "<name>_<i>" with its time in "<name>_<i>_time".
type Series struct {
	f     *File
	name  string
	tag   string
	times []float64
}

// NewSeries exposes name with the given type tag and returns an empty
// series.
func NewSeries(f *File, name, tag string) (*Series, error) {
	if err := f.AppendString(ExposurePrefix+name, tag); err != nil {
		return nil, errors.Wrapf(err, "creating series %q", name)
	}
	return &Series{f: f, name: name, tag: tag}, nil
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// File returns the container the series writes to.
func (s *Series) File() *File { return s.f }

// Type returns the type tag.
func (s *Series) Type() string { return s.tag }

// Count returns the number of recorded steps.
func (s *Series) Count() int { return len(s.times) }

// Times returns a copy of the recorded times.
func (s *Series) Times() []float64 {
	return append([]float64(nil), s.times...)
}

// LastTime returns the most recent time, or false if nothing is recorded.
func (s *Series) LastTime() (float64, bool) {
	if len(s.times) == 0 {
		return 0, false
	}
	return s.times[len(s.times)-1], true
}

// BaseName returns the record name of step i.
func (s *Series) BaseName(i int) string {
	return fmt.Sprintf("%s_%d", s.name, i)
}

// StepName returns the record name of the most recent step. It panics if
// no step has been recorded.
func (s *Series) StepName() string {
	if len(s.times) == 0 {
		panic("dtbin: series has no steps")
	}
	return s.BaseName(len(s.times) - 1)
}

// timesTooClose reports whether two times would be indistinguishable.
func timesTooClose(t1, t2 float64) bool {
	return math.Abs(t1-t2) <= 1e-6*(t1+t2)
}

// CheckTime reports whether t would be accepted as the next step.
func (s *Series) CheckTime(t float64) error {
	if t < 0 || math.IsNaN(t) {
		return errors.Wrapf(ErrNegativeTime, "series %q: %v", s.name, t)
	}
	last, ok := s.LastTime()
	if !ok {
		return nil
	}
	if t <= last {
		return errors.Wrapf(ErrNotIncreasing, "series %q: %v after %v", s.name, t, last)
	}
	if timesTooClose(t, last) {
		return errors.Wrapf(ErrTooClose, "series %q: %v after %v", s.name, t, last)
	}
	return nil
}

// RecordStep validates t and appends "<name>_<i>_time" for the new step i.
// The caller writes the step's value under BaseName(i) or StepName().
func (s *Series) RecordStep(t float64) error {
	if err := s.CheckTime(t); err != nil {
		return err
	}
	step := s.BaseName(len(s.times))
	if err := s.f.AppendScalar(step+"_time", t); err != nil {
		return err
	}
	s.times = append(s.times, t)
	return nil
}

// Add records a step at time t and writes v as its value.
func (s *Series) Add(t float64, v any) error {
	if err := s.RecordStep(t); err != nil {
		return err
	}
	return s.f.WriteAnonymous(s.StepName(), v)
}

// Group is a series whose steps each hold a fixed set of named variables.
type Group struct {
	*Series
	schema map[string]string
	names  []string
}

// NewGroup creates a group series. schema maps each variable name to its
// type tag; every step must supply exactly those variables.
func NewGroup(f *File, name string, schema map[string]string) (*Group, error) {
	s, err := NewSeries(f, name, TagGroup)
	if err != nil {
		return nil, err
	}
	g := &Group{Series: s, schema: make(map[string]string, len(schema))}
	for k, v := range schema {
		g.schema[k] = v
		g.names = append(g.names, k)
	}
	sort.Strings(g.names)
	return g, nil
}

// Names returns the variable names in descriptor order.
func (g *Group) Names() []string {
	return append([]string(nil), g.names...)
}

// writeStructure writes the descriptors DataTank uses to rebuild the group.
func (g *Group) writeStructure() error {
	base := SeriesInfoPrefix + g.name
	for i, n := range g.names {
		k := i + 1
		if err := g.f.AppendString(fmt.Sprintf("%s_%dN", base, k), n); err != nil {
			return err
		}
		if err := g.f.AppendString(fmt.Sprintf("%s_%dT", base, k), g.schema[n]); err != nil {
			return err
		}
	}
	if err := g.f.AppendScalar(base+"_N", float64(len(g.names))); err != nil {
		return err
	}
	return g.f.AppendString(base, TagGroup)
}

// Add records a step at time t with one value per schema variable. Each
// value is written as "<name>_<i>_<var>", followed by an empty double array
// at "<name>_<i>".
func (g *Group) Add(t float64, values map[string]any) error {
	if len(values) != len(g.schema) {
		return errors.Wrapf(ErrInconsistentNames, "group %q: %d values for %d variables", g.name, len(values), len(g.schema))
	}
	for k := range values {
		if _, ok := g.schema[k]; !ok {
			return errors.Wrapf(ErrInconsistentNames, "group %q: unexpected variable %q", g.name, k)
		}
	}
	if err := g.CheckTime(t); err != nil {
		return err
	}

	if g.Count() == 0 {
		if err := g.writeStructure(); err != nil {
			return errors.Wrapf(err, "group %q: writing structure", g.name)
		}
	}
	if err := g.RecordStep(t); err != nil {
		return err
	}
	step := g.StepName()
	for _, n := range g.names {
		if err := g.f.WriteAnonymous(step+"_"+n, values[n]); err != nil {
			return errors.Wrapf(err, "group %q", g.name)
		}
	}
	empty, _ := EmptyArray(Double)
	return g.f.AppendArray(step, empty)
}
