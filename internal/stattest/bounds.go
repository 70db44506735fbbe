package stattest

import "fmt"

// Bounds holds a lower (all regressors I(0)) and upper (all I(1)) critical
// bound pair for one significance level.
type Bounds struct {
	Lower float64
	Upper float64
}

// Asymptotic bounds-test critical values, Pesaran, Shin & Smith (2001),
// case III (unrestricted intercept, no trend), indexed by the number of
// level regressors k.
var fBoundsCaseIII = map[int]map[string]Bounds{
	1: {"10%": {4.04, 4.78}, "5%": {4.94, 5.73}, "1%": {6.84, 7.84}},
	2: {"10%": {3.17, 4.14}, "5%": {3.79, 4.85}, "1%": {5.15, 6.36}},
	3: {"10%": {2.72, 3.77}, "5%": {3.23, 4.35}, "1%": {4.29, 5.61}},
	4: {"10%": {2.45, 3.52}, "5%": {2.86, 4.01}, "1%": {3.74, 5.06}},
	5: {"10%": {2.26, 3.35}, "5%": {2.62, 3.79}, "1%": {3.41, 4.68}},
}

// t-bounds (case III), same source, table CII. Left-tailed: more negative
// rejects the no-relationship null.
var tBoundsCaseIII = map[int]map[string]Bounds{
	1: {"10%": {-2.57, -2.91}, "5%": {-2.86, -3.22}, "1%": {-3.43, -3.82}},
	2: {"10%": {-2.57, -3.21}, "5%": {-2.86, -3.53}, "1%": {-3.43, -4.10}},
	3: {"10%": {-2.57, -3.46}, "5%": {-2.86, -3.78}, "1%": {-3.43, -4.37}},
	4: {"10%": {-2.57, -3.66}, "5%": {-2.86, -3.99}, "1%": {-3.43, -4.60}},
	5: {"10%": {-2.57, -3.86}, "5%": {-2.86, -4.19}, "1%": {-3.43, -4.79}},
}

// FBounds returns the F-test bounds for k level regressors at the given
// level ("10%", "5%", "1%"), case III deterministics.
func FBounds(k int, level string) (Bounds, error) {
	row, ok := fBoundsCaseIII[k]
	if !ok {
		return Bounds{}, fmt.Errorf("bounds: no F critical values for k=%d", k)
	}
	b, ok := row[level]
	if !ok {
		return Bounds{}, fmt.Errorf("bounds: unknown significance level %q", level)
	}
	return b, nil
}

// TBounds returns the t-test bounds for k level regressors at the given
// level, case III deterministics.
func TBounds(k int, level string) (Bounds, error) {
	row, ok := tBoundsCaseIII[k]
	if !ok {
		return Bounds{}, fmt.Errorf("bounds: no t critical values for k=%d", k)
	}
	b, ok := row[level]
	if !ok {
		return Bounds{}, fmt.Errorf("bounds: unknown significance level %q", level)
	}
	return b, nil
}

// FBoundsPValue places an F statistic on a coarse p-value scale by
// interpolating against the upper (I(1)) bounds, mirroring the surface
// interpolation used for the Dickey-Fuller family. The bounds verdict never
// consumes this; it is reported for context only.
func FBoundsPValue(stat float64, k int) float64 {
	row, ok := fBoundsCaseIII[k]
	if !ok {
		return 1
	}
	anchors := []anchor{
		{0, 0.99},
		{row["10%"].Lower * 0.5, 0.75},
		{row["10%"].Lower, 0.25},
		{row["10%"].Upper, 0.10},
		{row["5%"].Upper, 0.05},
		{row["1%"].Upper, 0.01},
		{row["1%"].Upper * 1.6, 0.001},
	}
	return interpolate(stat, anchors)
}
