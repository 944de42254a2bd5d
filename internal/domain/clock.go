package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ParseClock разбирает время "HH:MM" (допускается "H:MM") и возвращает минуты от полуночи
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	hh, mm, ok := strings.Cut(value, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !allDigits(hh) || !allDigits(mm) {
		return 0, ErrInvalidClockTime
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidClockTime
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidClockTime
	}
	return h*60 + m, nil
}

// allDigits не пропускает знаки, которые принимает strconv.Atoi
func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeClock возвращает время в каноническом виде "HH:MM"
func NormalizeClock(value string) (string, error) {
	minutes, err := ParseClock(value)
	if err != nil {
		return "", err
	}
	return FormatClock(minutes), nil
}

// FormatClock форматирует минуты от полуночи как "HH:MM"
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockDuration возвращает длительность в минутах между двумя отметками времени
// Отрицательная разница означает переход через полночь: добавляются сутки
func ClockDuration(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	diff := e - s
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff, nil
}

// DateLayout - формат даты обслуживания в запросах и отчетах
const DateLayout = "2006-01-02"

// ServiceDay возвращает календарный день момента t в поясе loc как полночь UTC
func ServiceDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseServiceDay разбирает дату "YYYY-MM-DD"
func ParseServiceDay(value string) (time.Time, error) {
	day, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrBadRequest
	}
	return day, nil
}

// MonthStart возвращает первый день месяца даты day
func MonthStart(day time.Time) time.Time {
	y, m, _ := day.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
