package color

import "math"

var (
	heatGreen  = RGB{76, 175, 80}
	heatYellow = RGB{255, 235, 59}
	heatRed    = RGB{244, 67, 54}
)

// Heat maps a commit age onto green (new), yellow and red (maxAgeDays or
// older). A non-positive maxAgeDays counts as one day.
func Heat(ageDays, maxAgeDays int) RGB {
	if maxAgeDays <= 0 {
		maxAgeDays = 1
	}
	t := min(max(float64(ageDays)/float64(maxAgeDays), 0), 1)
	if t < 0.5 {
		return lerp(heatGreen, heatYellow, t*2)
	}
	return lerp(heatYellow, heatRed, (t-0.5)*2)
}

func lerp(from, to RGB, u float64) RGB {
	return RGB{
		R: lerpChannel(from.R, to.R, u),
		G: lerpChannel(from.G, to.G, u),
		B: lerpChannel(from.B, to.B, u),
	}
}

func lerpChannel(from, to uint8, u float64) uint8 {
	v := math.Round(float64(from) + (float64(to)-float64(from))*u)
	return uint8(min(max(v, 0), 255))
}
