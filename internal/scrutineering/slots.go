package scrutineering

import (
	"fmt"
	"strconv"
	"strings"
)

// OperatingWindow — рабочее окно площадки в минутах от полуночи.
// Сетка слотов считается от открытия с шагом в длительность инспекции.
type OperatingWindow struct {
	Open  int
	Close int
}

// ParseClock разбирает время вида "09:00" в минуты от полуночи.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}

// FormatClock — обратное к ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NewOperatingWindow строит окно из пары "HH:MM".
func NewOperatingWindow(open, close string) (OperatingWindow, error) {
	o, err := ParseClock(open)
	if err != nil {
		return OperatingWindow{}, fmt.Errorf("opening time: %w", err)
	}
	c, err := ParseClock(close)
	if err != nil {
		return OperatingWindow{}, fmt.Errorf("closing time: %w", err)
	}
	if c <= o {
		return OperatingWindow{}, fmt.Errorf("closing time %s is not after opening time %s", close, open)
	}
	return OperatingWindow{Open: o, Close: c}, nil
}

// SlotGrid возвращает все выровненные времена начала для инспекции
// заданной длительности. Хвост, не вмещающий полный слот, отбрасывается.
func (w OperatingWindow) SlotGrid(durationMin int) ([]string, error) {
	if durationMin <= 0 {
		return nil, ErrSlotDuration
	}
	var grid []string
	for cur := w.Open; cur+durationMin <= w.Close; cur += durationMin {
		grid = append(grid, FormatClock(cur))
	}
	return grid, nil
}

// ValidateStart проверяет, что start лежит в рабочем окне и попадает на
// границу сетки слотов для заданной длительности.
func (w OperatingWindow) ValidateStart(start string, durationMin int) error {
	if durationMin <= 0 {
		return ErrSlotDuration
	}
	m, err := ParseClock(start)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutsideWindow, err)
	}
	if m < w.Open || m+durationMin > w.Close {
		return fmt.Errorf("%w: %s", ErrOutsideWindow, start)
	}
	if (m-w.Open)%durationMin != 0 {
		return fmt.Errorf("%w: %s", ErrUnalignedStart, start)
	}
	return nil
}
