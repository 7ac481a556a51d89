package solution

import "fmt"

// Transducer — плоская прямоугольная решётка элементов.
// Элементы нумеруются построчно, центр решётки в начале координат, z = 0.
type Transducer struct {
	ID      string
	Rows    int
	Cols    int
	PitchMM float64 // шаг между центрами соседних элементов, мм
}

// DefaultTransducer — решётка 8x8 (64 элемента).
func DefaultTransducer() Transducer {
	return Transducer{ID: "example_transducer", Rows: 8, Cols: 8, PitchMM: 4}
}

// ElementCount возвращает число элементов.
func (t Transducer) ElementCount() int {
	return t.Rows * t.Cols
}

func (t Transducer) validate() error {
	if t.Rows <= 0 || t.Cols <= 0 {
		return fmt.Errorf("некорректный размер решётки %dx%d", t.Rows, t.Cols)
	}
	if !(t.PitchMM > 0) {
		return fmt.Errorf("шаг решётки должен быть положительным, получено %v", t.PitchMM)
	}
	return nil
}

// ElementPositions возвращает координаты центров элементов в метрах.
func (t Transducer) ElementPositions() ([][3]float64, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	pitch := t.PitchMM * 1e-3
	x0 := -float64(t.Cols-1) / 2 * pitch
	y0 := -float64(t.Rows-1) / 2 * pitch

	out := make([][3]float64, 0, t.ElementCount())
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			out = append(out, [3]float64{x0 + float64(c)*pitch, y0 + float64(r)*pitch, 0})
		}
	}
	return out, nil
}
