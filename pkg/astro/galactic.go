// pkg/astro/galactic.go
package astro

import "math"

// J2000 equatorial to galactic rotation (Hipparcos definition)
var eqToGal = [3][3]float64{
	{-0.0548755604162154, -0.8734370902348850, -0.4838350155487132},
	{+0.4941094278755837, -0.4448296299600112, +0.7469822444972189},
	{-0.8676661490190047, -0.1980763734312015, +0.4559837761750669},
}

// EquatorialToGalactic converts J2000 RA/Dec in degrees to galactic
// longitude and latitude in degrees. Longitude is in [0, 360).
func EquatorialToGalactic(raDeg, decDeg float64) (l, b float64) {
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180

	v := [3]float64{
		math.Cos(dec) * math.Cos(ra),
		math.Cos(dec) * math.Sin(ra),
		math.Sin(dec),
	}

	var g [3]float64
	for i := 0; i < 3; i++ {
		g[i] = eqToGal[i][0]*v[0] + eqToGal[i][1]*v[1] + eqToGal[i][2]*v[2]
	}

	l = math.Atan2(g[1], g[0]) * 180 / math.Pi
	if l < 0 {
		l += 360
	}
	b = math.Asin(math.Max(-1, math.Min(1, g[2]))) * 180 / math.Pi
	return l, b
}
