package utils

import "time"

// ParseDate converte uma data no formato YYYY-MM-DD. String vazia retorna nil.
func ParseDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

// TruncateToDay zera hora, minuto e segundo mantendo o fuso
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysToDuration converte um número de dias (fracionário) em time.Duration
func DaysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}
