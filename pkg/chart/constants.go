package chart

import "fmt"

// Control chart constants indexed by subgroup size n (index == n, entries 0 and 1
// unused).  Values follow the standard ASTM/Shewhart factor tables for n = 2..25.
// Lookups outside the table return ErrUnsupportedSubgroupSize.

// a2 converts the mean range into the Xbar chart limit offset: UCL = X̿ + A2·R̄.
var a2 = [26]float64{
	0, 0, 1.880, 1.023, 0.729, 0.577, 0.483, 0.419, 0.373, 0.337, 0.308, 0.285, 0.266, 0.249,
	0.235, 0.223, 0.212, 0.203, 0.194, 0.187, 0.180, 0.173, 0.167, 0.162, 0.157, 0.153,
}

// a3 converts the mean standard deviation into the Xbar chart limit offset.
var a3 = [26]float64{
	0, 0, 2.659, 1.954, 1.628, 1.427, 1.287, 1.182, 1.099, 1.032, 0.975, 0.927, 0.886, 0.850,
	0.817, 0.789, 0.763, 0.739, 0.718, 0.698, 0.680, 0.663, 0.647, 0.633, 0.619, 0.606,
}

// dee2 is the bias factor converting a mean range into a sigma estimate: σ̂ = R̄/d2.
var dee2 = [26]float64{
	0, 0, 1.128, 1.693, 2.059, 2.326, 2.534, 2.704, 2.847, 2.970, 3.078, 3.173, 3.258, 3.336,
	3.407, 3.472, 3.532, 3.588, 3.640, 3.689, 3.735, 3.778, 3.819, 3.858, 3.895, 3.931,
}

// d3 and d4 bound the R chart: UCL = D4·R̄, LCL = D3·R̄ (D3 is zero below n = 7).
var d3 = [26]float64{
	0, 0, 0, 0, 0, 0, 0, 0.076, 0.136, 0.184, 0.223, 0.256, 0.283, 0.307, 0.328,
	0.347, 0.363, 0.378, 0.391, 0.403, 0.415, 0.425, 0.434, 0.443, 0.451, 0.459,
}

var d4 = [26]float64{
	0, 0, 3.267, 2.574, 2.282, 2.114, 2.004, 1.924, 1.864, 1.816, 1.777, 1.744, 1.717, 1.693,
	1.672, 1.653, 1.637, 1.622, 1.608, 1.597, 1.585, 1.575, 1.566, 1.557, 1.548, 1.541,
}

// b3 and b4 bound the S chart: UCL = B4·S̄, LCL = B3·S̄ (B3 is zero below n = 6).
var b3 = [26]float64{
	0, 0, 0, 0, 0, 0, 0.030, 0.118, 0.185, 0.239, 0.284, 0.321, 0.354, 0.382, 0.406,
	0.428, 0.448, 0.466, 0.482, 0.497, 0.510, 0.523, 0.534, 0.545, 0.555, 0.565,
}

var b4 = [26]float64{
	0, 0, 3.267, 2.568, 2.266, 2.089, 1.970, 1.882, 1.815, 1.761, 1.716, 1.679, 1.646, 1.618,
	1.594, 1.572, 1.552, 1.534, 1.518, 1.503, 1.490, 1.477, 1.466, 1.455, 1.445, 1.435,
}

// cee4 is the bias factor for the sample standard deviation: σ̂ = S̄/c4.
var cee4 = [26]float64{
	0, 0, 0.7979, 0.8862, 0.9213, 0.9400, 0.9515, 0.9594, 0.9650, 0.9693, 0.9727, 0.9754, 0.9776,
	0.9794, 0.9810, 0.9823, 0.9835, 0.9845, 0.9854, 0.9862, 0.9869, 0.9876, 0.9882, 0.9887,
	0.9892, 0.9896,
}

// e2 converts the mean moving range into the Individuals chart limit offset:
// UCL = X̄ + E2·MR̄.  Defined for moving-range spans 2..10.
var e2 = [11]float64{
	0, 0, 2.660, 1.772, 1.457, 1.290, 1.184, 1.109, 1.054, 1.010, 0.975,
}

func lookup(table []float64, n int) (float64, error) {
	if n < 2 || n >= len(table) {
		return 0, fmt.Errorf("%w: no constants for subgroup size %d", ErrUnsupportedSubgroupSize, n)
	}
	return table[n], nil
}

// A2 returns the Xbar-R limit factor for subgroup size n.
func A2(n int) (float64, error) { return lookup(a2[:], n) }

// A3 returns the Xbar-S limit factor for subgroup size n.
func A3(n int) (float64, error) { return lookup(a3[:], n) }

// D2 returns the range-to-sigma bias factor for subgroup size n.
func D2(n int) (float64, error) { return lookup(dee2[:], n) }

// D3 returns the R chart lower limit factor for subgroup size n.
func D3(n int) (float64, error) { return lookup(d3[:], n) }

// D4 returns the R chart upper limit factor for subgroup size n.
func D4(n int) (float64, error) { return lookup(d4[:], n) }

// B3 returns the S chart lower limit factor for subgroup size n.
func B3(n int) (float64, error) { return lookup(b3[:], n) }

// B4 returns the S chart upper limit factor for subgroup size n.
func B4(n int) (float64, error) { return lookup(b4[:], n) }

// C4 returns the standard-deviation bias factor for subgroup size n.
func C4(n int) (float64, error) { return lookup(cee4[:], n) }

// E2 returns the Individuals chart limit factor for moving-range span n (2..10).
func E2(n int) (float64, error) { return lookup(e2[:], n) }
