// Package dataset loads the monthly macro panel from CSV and derives the
// analysis variables. The raw file carries Date, ExchangeRate, Inflation and
// Production columns; Production is converted into an output gap before the
// panel reaches the pipeline.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/tkusuma/macrovar/internal/pipeline"
	"github.com/tkusuma/macrovar/internal/timeseries"
)

// Variable names as they appear downstream.
const (
	VarExchangeRate = "ExchangeRate"
	VarInflation    = "Inflation"
	VarOutputGap    = "OutputGap"
)

// DateLayout is day-month-year, e.g. "02-01-2015".
const DateLayout = "02-01-2006"

// MinObservations is the smallest monthly sample the tests downstream can
// carry: below this the ARDL grid and the HP filter both degrade badly.
const MinObservations = 75

// Panel is the loaded raw data plus the derived series the pipeline consumes.
type Panel struct {
	Dates        []time.Time
	ExchangeRate *timeseries.Series
	Inflation    *timeseries.Series
	Production   *timeseries.Series // raw, kept for plotting
	OutputGap    *timeseries.Series
}

// Dataset aligns the three analysis variables (exchange rate, inflation,
// output gap) into one pipeline-ready panel.
func (p *Panel) Dataset() (*timeseries.Dataset, error) {
	ds, err := timeseries.Align(p.ExchangeRate, p.Inflation, p.OutputGap)
	if err != nil {
		return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: "panel", Msg: "alignment failed", Err: err}
	}
	return ds, nil
}

type row struct {
	date       time.Time
	exchange   float64
	inflation  float64
	production float64
}

// Load reads the CSV at path, validates and sorts it by date, and derives the
// output gap with an HP filter at the given lambda (use
// timeseries.MonthlyLambda for monthly data).
func Load(path string, hpLambda float64) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: "panel", Msg: fmt.Sprintf("open %s", path), Err: err}
	}
	defer f.Close()
	return read(f, path, hpLambda)
}

func read(r io.Reader, path string, hpLambda float64) (*Panel, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: "panel", Msg: "read header", Err: err}
	}
	cols := map[string]int{}
	for j, name := range header {
		cols[name] = j
	}
	for _, name := range []string{"Date", VarExchangeRate, VarInflation, "Production"} {
		if _, ok := cols[name]; !ok {
			return nil, &pipeline.DataError{
				Stage: pipeline.StageData, Variable: name,
				Msg: fmt.Sprintf("missing column in %s", path),
			}
		}
	}

	var rows []row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: "panel", Msg: fmt.Sprintf("read row %d", line), Err: err}
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}

		date, err := time.Parse(DateLayout, record[cols["Date"]])
		if err != nil {
			return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: "Date", Msg: fmt.Sprintf("row %d: %q", line, record[cols["Date"]]), Err: err}
		}
		var rec row
		rec.date = date
		for _, c := range []struct {
			name string
			dst  *float64
		}{
			{VarExchangeRate, &rec.exchange},
			{VarInflation, &rec.inflation},
			{"Production", &rec.production},
		} {
			v, err := strconv.ParseFloat(record[cols[c.name]], 64)
			if err != nil {
				return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: c.name, Msg: fmt.Sprintf("row %d: %q", line, record[cols[c.name]]), Err: err}
			}
			*c.dst = v
		}
		rows = append(rows, rec)
	}

	if len(rows) < MinObservations {
		return nil, &pipeline.DataError{
			Stage: pipeline.StageData, Variable: "panel",
			Msg: fmt.Sprintf("%d observations, need at least %d", len(rows), MinObservations),
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	for i := 1; i < len(rows); i++ {
		if !rows[i].date.After(rows[i-1].date) {
			return nil, &pipeline.DataError{
				Stage: pipeline.StageData, Variable: "Date",
				Msg: fmt.Sprintf("duplicate date %s", rows[i].date.Format(DateLayout)),
			}
		}
	}

	n := len(rows)
	dates := make([]time.Time, n)
	ex := make([]float64, n)
	infl := make([]float64, n)
	prod := make([]float64, n)
	for i, r := range rows {
		dates[i] = r.date
		ex[i] = r.exchange
		infl[i] = r.inflation
		prod[i] = r.production
	}

	_, cycle, err := timeseries.HPFilter(prod, hpLambda)
	if err != nil {
		return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: VarOutputGap, Msg: "HP filter", Err: err}
	}

	panel := &Panel{Dates: dates}
	for _, s := range []struct {
		name   string
		values []float64
		dst    **timeseries.Series
	}{
		{VarExchangeRate, ex, &panel.ExchangeRate},
		{VarInflation, infl, &panel.Inflation},
		{"Production", prod, &panel.Production},
		{VarOutputGap, cycle, &panel.OutputGap},
	} {
		series, err := timeseries.New(s.name, dates, s.values)
		if err != nil {
			return nil, &pipeline.DataError{Stage: pipeline.StageData, Variable: s.name, Msg: "build series", Err: err}
		}
		*s.dst = series
	}
	return panel, nil
}
