package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// competenciaYearWindow é a distância máxima, em anos, entre a competência e o ano atual
const competenciaYearWindow = 10

var competenciaPattern = regexp.MustCompile(`^\d{2}/\d{4}$`)

// ErrInvalidCompetencia indica texto fora do formato "MM/YYYY" ou mês fora de 1..12
var ErrInvalidCompetencia = errors.New("competência inválida")

// FormatCompetencia formata a data como "MM/YYYY"
func FormatCompetencia(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}

// splitCompetencia extrai mês e ano de "MM/YYYY"
func splitCompetencia(s string) (month, year int, ok bool) {
	if !competenciaPattern.MatchString(s) {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(s[:2])
	year, _ = strconv.Atoi(s[3:])
	return month, year, true
}

// ParseCompetencia converte "MM/YYYY" para o primeiro dia do mês (UTC)
func ParseCompetencia(s string) (time.Time, error) {
	month, year, ok := splitCompetencia(s)
	if !ok || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCompetencia, s)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// IsValidCompetencia valida formato, mês e a janela de ±10 anos em relação a agora
func IsValidCompetencia(s string) bool {
	return IsValidCompetenciaAt(s, time.Now())
}

// IsValidCompetenciaAt é IsValidCompetencia com o "agora" informado pelo chamador
func IsValidCompetenciaAt(s string, now time.Time) bool {
	month, year, ok := splitCompetencia(s)
	if !ok || month < 1 || month > 12 {
		return false
	}
	current := now.Year()
	return year >= current-competenciaYearWindow && year <= current+competenciaYearWindow
}

// CurrentCompetencia devolve a competência do mês de referência
func CurrentCompetencia(now time.Time) string {
	return FormatCompetencia(now)
}
