package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// packSize is the number of quantization steps for each packed angle.
const packSize = 252

// PackedNormal is a unit normal quantized to two bytes: the high byte U holds
// the azimuth around Z and the low byte V the polar angle from +Z.
// Zero-length and NaN normals pack to 0, which decodes as +Z.
type PackedNormal uint16

// PackNormal quantizes n. n does not need to be normalized.
func PackNormal(n r3.Vec) PackedNormal {
	l := r3.Norm(n)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return 0
	}
	n = r3.Scale(1/l, n)

	lat := math.Acos(math.Max(-1, math.Min(1, n.Z)))
	lon := math.Atan2(n.Y, n.X)
	if lon < 0 {
		lon += 2 * math.Pi
	}

	v := int(math.Round(lat / math.Pi * packSize))
	u := int(math.Round(lon/(2*math.Pi)*packSize)) % packSize
	if v == 0 || v == packSize {
		// Azimuth is meaningless at the poles.
		u = 0
	}
	return PackedNormal(u<<8 | v)
}

// U returns the azimuth byte.
func (p PackedNormal) U() byte {
	return byte(p >> 8)
}

// V returns the polar angle byte.
func (p PackedNormal) V() byte {
	return byte(p)
}

// Vec decodes p into a unit vector.
func (p PackedNormal) Vec() r3.Vec {
	lat := float64(p.V()) / packSize * math.Pi
	lon := float64(p.U()) / packSize * 2 * math.Pi
	sinLat := math.Sin(lat)
	return r3.Vec{
		X: sinLat * math.Cos(lon),
		Y: sinLat * math.Sin(lon),
		Z: math.Cos(lat),
	}
}
