// Package timeseries holds the date-indexed series type shared by the whole
// pipeline, together with the transformations (differencing, alignment,
// trend/cycle decomposition) that build working datasets from raw data.
package timeseries

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Series is an ordered sequence of observations indexed by date.
// Dates must be strictly increasing and len(Dates) == len(Values).
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// New validates and builds a Series.
func New(name string, dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("series %s: %d dates but %d values", name, len(dates), len(values))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("series %s: empty", name)
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("series %s: dates not strictly increasing at row %d (%s >= %s)",
				name, i, dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}
	return &Series{Name: name, Dates: dates, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Values) }

// Clone returns a deep copy.
func (s *Series) Clone() *Series {
	dates := make([]time.Time, len(s.Dates))
	copy(dates, s.Dates)
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{Name: s.Name, Dates: dates, Values: values}
}

// Diff returns the first difference. The result has one fewer observation
// and keeps the date of the later observation in each pair.
func (s *Series) Diff() *Series {
	n := s.Len()
	d := make([]float64, n-1)
	dates := make([]time.Time, n-1)
	for i := 1; i < n; i++ {
		d[i-1] = s.Values[i] - s.Values[i-1]
		dates[i-1] = s.Dates[i]
	}
	return &Series{Name: "d_" + s.Name, Dates: dates, Values: d}
}


// Dataset is a set of series sharing one common date index.
type Dataset struct {
	Names  []string
	Dates  []time.Time
	series map[string]*Series
}

// Align builds a Dataset over the intersection of the input date indices.
// All series in the result share the same dates in the same order. An error
// is returned if the intersection is empty or if any series has an internal
// gap inside the common window (the common index must be a contiguous run of
// every input's index).
func Align(series ...*Series) (*Dataset, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("align: no series")
	}

	// Count how many series carry each date.
	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, d := range s.Dates {
			counts[d]++
		}
	}

	// Common index in the first series' order.
	var common []time.Time
	for _, d := range series[0].Dates {
		if counts[d] == len(series) {
			common = append(common, d)
		}
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("align: no common dates across %d series", len(series))
	}

	ds := &Dataset{
		Dates:  common,
		series: make(map[string]*Series, len(series)),
	}
	for _, s := range series {
		idx := make(map[time.Time]int, s.Len())
		for i, d := range s.Dates {
			idx[d] = i
		}
		vals := make([]float64, len(common))
		prev := -1
		for i, d := range common {
			j, ok := idx[d]
			if !ok {
				return nil, fmt.Errorf("align: series %s missing date %s", s.Name, d.Format("2006-01-02"))
			}
			if prev >= 0 && j != prev+1 {
				return nil, fmt.Errorf("align: series %s has a gap inside the common window at %s",
					s.Name, d.Format("2006-01-02"))
			}
			prev = j
			vals[i] = s.Values[j]
		}
		ds.Names = append(ds.Names, s.Name)
		ds.series[s.Name] = &Series{Name: s.Name, Dates: common, Values: vals}
	}
	return ds, nil
}

// Series returns the named series, or nil if absent.
func (d *Dataset) Series(name string) *Series { return d.series[name] }

// Len returns the common index length.
func (d *Dataset) Len() int { return len(d.Dates) }

// K returns the number of variables.
func (d *Dataset) K() int { return len(d.Names) }

// Matrix returns the T x K data matrix in Names order.
func (d *Dataset) Matrix() *mat.Dense {
	T, K := d.Len(), d.K()
	m := mat.NewDense(T, K, nil)
	for j, name := range d.Names {
		s := d.series[name]
		for i := 0; i < T; i++ {
			m.Set(i, j, s.Values[i])
		}
	}
	return m
}
