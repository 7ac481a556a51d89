package driver

import (
	"lifuconsole/internal/domain/models"
	"lifuconsole/pkg/lifu"
)

// ConvertEvent преобразует событие lifu в доменное.
func ConvertEvent(ev lifu.Event) models.DeviceEvent {
	out := models.DeviceEvent{
		Descriptor: models.Descriptor(ev.Descriptor),
		Port:       ev.Port,
		Payload:    ev.Line,
	}
	switch ev.Kind {
	case lifu.EventAttach:
		out.Kind = models.DeviceAttached
	case lifu.EventDetach:
		out.Kind = models.DeviceDetached
	default:
		out.Kind = models.DeviceData
	}
	return out
}

func convertPoint(p models.Point) lifu.PointPayload {
	return lifu.PointPayload{Position: p.Position, Units: p.Units}
}

func convertPayloadPoint(p lifu.PointPayload) models.Point {
	return models.Point{Position: p.Position, Units: p.Units}
}

// ConvertSolutionToPayload преобразует доменное решение в формат файла решения.
func ConvertSolutionToPayload(s *models.Solution) *lifu.SolutionPayload {
	if s == nil {
		return nil
	}
	foci := make([]lifu.PointPayload, 0, len(s.Foci))
	for _, f := range s.Foci {
		foci = append(foci, convertPoint(f))
	}
	return &lifu.SolutionPayload{
		ID:           s.ID,
		Name:         s.Name,
		ProtocolID:   s.ProtocolID,
		TransducerID: s.TransducerID,
		Delays:       [][]float64{append([]float64(nil), s.Delays...)},
		Apodizations: [][]float64{append([]float64(nil), s.Apodizations...)},
		Pulse: lifu.PulsePayload{
			Frequency: s.Pulse.Frequency,
			Amplitude: s.Pulse.Amplitude,
			Duration:  s.Pulse.Duration,
		},
		Sequence: lifu.SequencePayload{
			PulseInterval:      s.Sequence.PulseInterval,
			PulseCount:         s.Sequence.PulseCount,
			PulseTrainInterval: s.Sequence.PulseTrainInterval,
			PulseTrainCount:    s.Sequence.PulseTrainCount,
		},
		Target:   convertPoint(s.Target),
		Foci:     foci,
		Voltage:  s.Voltage,
		Approved: s.Approved,
	}
}

// ConvertPayloadToSolution восстанавливает решение из файла и проверяет его
// для преобразователя с elementCount элементами.
func ConvertPayloadToSolution(p *lifu.SolutionPayload, elementCount int) (*models.Solution, error) {
	foci := make([]models.Point, 0, len(p.Foci))
	for _, f := range p.Foci {
		foci = append(foci, convertPayloadPoint(f))
	}
	return models.NewSolution(models.Solution{
		ID:           p.ID,
		Name:         p.Name,
		ProtocolID:   p.ProtocolID,
		TransducerID: p.TransducerID,
		Delays:       lifu.FirstRow(p.Delays),
		Apodizations: lifu.FirstRow(p.Apodizations),
		Pulse: models.Pulse{
			Frequency: p.Pulse.Frequency,
			Amplitude: p.Pulse.Amplitude,
			Duration:  p.Pulse.Duration,
		},
		Sequence: models.Sequence{
			PulseInterval:      p.Sequence.PulseInterval,
			PulseCount:         p.Sequence.PulseCount,
			PulseTrainInterval: p.Sequence.PulseTrainInterval,
			PulseTrainCount:    p.Sequence.PulseTrainCount,
		},
		Target:   convertPayloadPoint(p.Target),
		Foci:     foci,
		Voltage:  p.Voltage,
		Approved: p.Approved,
	}, elementCount)
}

// LoadSolutionFile разбирает JSON файла решения.
func LoadSolutionFile(data []byte, elementCount int) (*models.Solution, error) {
	p, err := lifu.ParseSolution(data)
	if err != nil {
		return nil, err
	}
	return ConvertPayloadToSolution(p, elementCount)
}

// EncodeSolutionFile кодирует решение в JSON файла решения.
func EncodeSolutionFile(s *models.Solution) ([]byte, error) {
	return ConvertSolutionToPayload(s).Marshal()
}
