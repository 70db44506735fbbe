package stattest

// Interpolated p-value surfaces for the nonstandard-distribution tests.
// Anchors are the tabulated asymptotic critical values (MacKinnon for the
// Dickey-Fuller family, KPSS 1992 Table 1); values between anchors are
// linearly interpolated, which is accurate enough for threshold decisions
// at conventional significance levels.

type anchor struct {
	stat float64
	p    float64
}

// interpolate assumes anchors sorted by stat ascending with p decreasing for
// left-tailed tests (or increasing for right-tailed after reordering).
func interpolate(stat float64, anchors []anchor) float64 {
	if stat <= anchors[0].stat {
		return anchors[0].p
	}
	last := anchors[len(anchors)-1]
	if stat >= last.stat {
		return last.p
	}
	for i := 1; i < len(anchors); i++ {
		if stat <= anchors[i].stat {
			lo, hi := anchors[i-1], anchors[i]
			w := (stat - lo.stat) / (hi.stat - lo.stat)
			return lo.p + w*(hi.p-lo.p)
		}
	}
	return last.p
}

var dfAnchorsConst = []anchor{
	{-3.96, 0.001}, {-3.43, 0.01}, {-3.12, 0.025}, {-2.86, 0.05},
	{-2.57, 0.10}, {-2.23, 0.20}, {-1.94, 0.30}, {-1.62, 0.50},
	{-0.92, 0.75}, {0.0, 0.95}, {1.0, 0.99},
}

var dfAnchorsConstTrend = []anchor{
	{-4.49, 0.001}, {-3.96, 0.01}, {-3.66, 0.025}, {-3.41, 0.05},
	{-3.13, 0.10}, {-2.78, 0.20}, {-2.50, 0.30}, {-2.18, 0.50},
	{-1.55, 0.75}, {-0.5, 0.95}, {0.5, 0.99},
}

// dickeyFullerPValue approximates the left-tail p-value of the ADF/PP tau
// statistic under the given deterministic specification.
func dickeyFullerPValue(stat float64, trend Trend) float64 {
	if trend == TrendConstTrend {
		return interpolate(stat, dfAnchorsConstTrend)
	}
	return interpolate(stat, dfAnchorsConst)
}

func dfCriticals(trend Trend) map[string]float64 {
	if trend == TrendConstTrend {
		return map[string]float64{"1%": -3.96, "5%": -3.41, "10%": -3.13}
	}
	return map[string]float64{"1%": -3.43, "5%": -2.86, "10%": -2.57}
}

var kpssAnchorsConst = []anchor{
	{0.0, 0.99}, {0.119, 0.90}, {0.347, 0.10}, {0.463, 0.05},
	{0.574, 0.025}, {0.739, 0.01}, {1.2, 0.005}, {2.0, 0.001},
}

var kpssAnchorsConstTrend = []anchor{
	{0.0, 0.99}, {0.060, 0.90}, {0.119, 0.10}, {0.146, 0.05},
	{0.176, 0.025}, {0.216, 0.01}, {0.4, 0.005}, {0.8, 0.001},
}

// kpssPValue approximates the right-tail p-value of the KPSS statistic.
func kpssPValue(stat float64, trend Trend) float64 {
	if trend == TrendConstTrend {
		return interpolate(stat, kpssAnchorsConstTrend)
	}
	return interpolate(stat, kpssAnchorsConst)
}

func kpssCriticals(trend Trend) map[string]float64 {
	if trend == TrendConstTrend {
		return map[string]float64{"1%": 0.216, "5%": 0.146, "10%": 0.119}
	}
	return map[string]float64{"1%": 0.739, "5%": 0.463, "10%": 0.347}
}
