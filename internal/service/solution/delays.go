package solution

import (
	"errors"
	"math"
)

// SpeedOfSound в ткани, м/с.
const SpeedOfSound = 1500.0

// FocusDelays вычисляет фокусирующий закон задержек: самый дальний от фокуса
// элемент получает нулевую задержку, ближние задерживаются так, чтобы волны
// пришли в фокус одновременно. Координаты в метрах, задержки в секундах.
func FocusDelays(focus [3]float64, elements [][3]float64) ([]float64, error) {
	if len(elements) == 0 {
		return nil, errors.New("нет элементов")
	}

	tof := make([]float64, len(elements))
	maxTOF := 0.0
	for i, e := range elements {
		dx := focus[0] - e[0]
		dy := focus[1] - e[1]
		dz := focus[2] - e[2]
		tof[i] = math.Sqrt(dx*dx+dy*dy+dz*dz) / SpeedOfSound
		if tof[i] > maxTOF {
			maxTOF = tof[i]
		}
	}

	delays := make([]float64, len(elements))
	for i := range tof {
		delays[i] = maxTOF - tof[i]
	}
	return delays, nil
}

// UniformApodization возвращает веса 1 для n элементов.
func UniformApodization(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
