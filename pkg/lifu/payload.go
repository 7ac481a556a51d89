package lifu

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PulsePayload — параметры импульса.
type PulsePayload struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
	Duration  float64 `json:"duration"`
}

// SequencePayload — тайминги последовательности.
type SequencePayload struct {
	PulseInterval      float64 `json:"pulse_interval"`
	PulseCount         int     `json:"pulse_count"`
	PulseTrainInterval float64 `json:"pulse_train_interval"`
	PulseTrainCount    int     `json:"pulse_train_count"`
}

// PointPayload — точка с единицами измерения.
type PointPayload struct {
	Position [3]float64 `json:"position"`
	Units    string     `json:"units"`
}

// SolutionPayload — решение в формате файла решения.
// Задержки и аподизация хранятся матрицами (по строке на фокус).
type SolutionPayload struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ProtocolID   string          `json:"protocol_id"`
	TransducerID string          `json:"transducer_id"`
	Delays       [][]float64     `json:"delays"`
	Apodizations [][]float64     `json:"apodizations"`
	Pulse        PulsePayload    `json:"pulse"`
	Sequence     SequencePayload `json:"sequence"`
	Target       PointPayload    `json:"target"`
	Foci         []PointPayload  `json:"foci"`
	Voltage      float64         `json:"voltage,omitempty"`
	Approved     bool            `json:"approved"`
}

// Marshal кодирует решение в компактный JSON.
func (p *SolutionPayload) Marshal() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("кодирование решения: %w", err)
	}
	return data, nil
}

// ParseSolution декодирует JSON решения.
func ParseSolution(data []byte) (*SolutionPayload, error) {
	var p SolutionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("разбор решения: %w", err)
	}
	return &p, nil
}

// FirstRow возвращает первую строку матрицы (одиночный фокус).
func FirstRow(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	return append([]float64(nil), m[0]...)
}
