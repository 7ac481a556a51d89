package models

import (
	"fmt"
	"math"
)

// Point — точка в пространстве с единицами измерения ("mm", "cm", "m").
type Point struct {
	Position [3]float64
	Units    string
}

// Meters возвращает координаты точки в метрах.
func (p Point) Meters() ([3]float64, error) {
	var scale float64
	switch p.Units {
	case "mm":
		scale = 1e-3
	case "cm":
		scale = 1e-2
	case "m", "":
		scale = 1
	default:
		return [3]float64{}, fmt.Errorf("неизвестные единицы измерения %q", p.Units)
	}
	return [3]float64{p.Position[0] * scale, p.Position[1] * scale, p.Position[2] * scale}, nil
}

// Pulse описывает один импульс.
type Pulse struct {
	Frequency float64 // Гц
	Amplitude float64
	Duration  float64 // с
}

// Sequence описывает тайминги последовательности импульсов.
type Sequence struct {
	PulseInterval      float64 // с
	PulseCount         int
	PulseTrainInterval float64 // с
	PulseTrainCount    int
}

// Solution — полное описание решения (геометрия луча + тайминги),
// применяемое к TX перед сонификацией. После создания не изменяется.
type Solution struct {
	ID           string
	Name         string
	ProtocolID   string
	TransducerID string
	Delays       []float64
	Apodizations []float64
	Pulse        Pulse
	Sequence     Sequence
	Target       Point
	Foci         []Point
	Voltage      float64
	Approved     bool
}

// NewSolution проверяет инварианты и возвращает решение.
// elementCount — число элементов преобразователя; массивы задержек и аподизации
// должны иметь ровно такую длину. Массивы копируются.
func NewSolution(s Solution, elementCount int) (*Solution, error) {
	if err := s.validate(elementCount); err != nil {
		return nil, err
	}

	out := s
	out.Delays = append([]float64(nil), s.Delays...)
	out.Apodizations = append([]float64(nil), s.Apodizations...)
	out.Foci = append([]Point(nil), s.Foci...)
	return &out, nil
}

func (s Solution) validate(elementCount int) error {
	if elementCount <= 0 {
		return fmt.Errorf("%w: число элементов должно быть положительным, получено %d", ErrInvalidSolution, elementCount)
	}
	if len(s.Delays) != elementCount {
		return fmt.Errorf("%w: задержек %d, элементов %d", ErrInvalidSolution, len(s.Delays), elementCount)
	}
	if len(s.Apodizations) != elementCount {
		return fmt.Errorf("%w: весов аподизации %d, элементов %d", ErrInvalidSolution, len(s.Apodizations), elementCount)
	}
	for i, d := range s.Delays {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: недопустимая задержка [%d]=%v", ErrInvalidSolution, i, d)
		}
	}
	for i, a := range s.Apodizations {
		if a < 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("%w: недопустимый вес аподизации [%d]=%v", ErrInvalidSolution, i, a)
		}
	}
	if !(s.Pulse.Duration > 0) {
		return fmt.Errorf("%w: длительность импульса должна быть положительной", ErrInvalidSolution)
	}
	if !(s.Pulse.Frequency > 0) {
		return fmt.Errorf("%w: частота должна быть положительной", ErrInvalidSolution)
	}
	if !(s.Sequence.PulseInterval > 0) {
		return fmt.Errorf("%w: интервал между импульсами должен быть положительным", ErrInvalidSolution)
	}
	if s.Pulse.Duration > s.Sequence.PulseInterval {
		return fmt.Errorf("%w: длительность импульса %v с превышает интервал %v с",
			ErrInvalidSolution, s.Pulse.Duration, s.Sequence.PulseInterval)
	}
	if s.Sequence.PulseCount < 1 || s.Sequence.PulseTrainCount < 1 {
		return fmt.Errorf("%w: число импульсов и серий должно быть не меньше 1", ErrInvalidSolution)
	}
	if s.Sequence.PulseTrainInterval < 0 {
		return fmt.Errorf("%w: интервал между сериями не может быть отрицательным", ErrInvalidSolution)
	}
	if _, err := s.Target.Meters(); err != nil {
		return fmt.Errorf("%w: цель: %v", ErrInvalidSolution, err)
	}
	return nil
}
