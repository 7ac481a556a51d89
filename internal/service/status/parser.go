package status

import (
	"regexp"
	"strconv"
	"strings"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
)

// StatusPrefix — начало строки статуса, по которому монитор отличает её от прочих данных.
const StatusPrefix = "STATUS:"

var statusPattern = regexp.MustCompile(
	`^STATUS:(\w+),MODE:(\w+),PULSE_TRAIN:\[(\d+)/(\d+)\],PULSE:\[(\d+)/(\d+)\],TEMP_TX:(-?[0-9.]+),TEMP_AMBIENT:(-?[0-9.]+)$`,
)

// Parser разбирает строки статуса TX.
type Parser struct {
	logger ports.Logger
}

// NewParser создает парсер строк статуса.
func NewParser(logger ports.Logger) *Parser {
	return &Parser{logger: logger.With("STATUS")}
}

// IsStatusLine сообщает, похожа ли строка на статус.
func IsStatusLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), StatusPrefix)
}

// Parse возвращает снапшот статуса. Если строка не соответствует формату,
// возвращается снапшот без полей, а ошибка пишется в лог.
func (p *Parser) Parse(line string) models.StatusSnapshot {
	snap, ok := parseStatus(line)
	if !ok {
		p.logger.Warn("Не удалось разобрать строку статуса: %q", line)
		return models.StatusSnapshot{}
	}
	return snap
}

func parseStatus(line string) (models.StatusSnapshot, bool) {
	m := statusPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.StatusSnapshot{}, false
	}

	var ints [4]int
	for i := range ints {
		v, err := strconv.Atoi(m[3+i])
		if err != nil {
			return models.StatusSnapshot{}, false
		}
		ints[i] = v
	}

	tempTX, err := strconv.ParseFloat(m[7], 64)
	if err != nil {
		return models.StatusSnapshot{}, false
	}
	tempAmbient, err := strconv.ParseFloat(m[8], 64)
	if err != nil {
		return models.StatusSnapshot{}, false
	}

	status := m[1]
	mode := m[2]
	trainPct := percent(ints[0], ints[1])
	pulsePct := percent(ints[2], ints[3])

	return models.StatusSnapshot{
		Status:            &status,
		Mode:              &mode,
		PulseTrainPercent: &trainPct,
		PulsePercent:      &pulsePct,
		TempTX:            &tempTX,
		TempAmbient:       &tempAmbient,
	}, true
}

func percent(current, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(current) / float64(total) * 100
}
