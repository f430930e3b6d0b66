package calendar

import (
	"errors"
	"time"
)

var ErrSlotDuration = errors.New("slot duration must be positive")

// SplitDay разбивает рабочий интервал суток [open, close) на слоты
// фиксированной длительности и возвращает их начала по возрастанию.
// "Хвост" короче step отбрасывается; open >= close даёт пустой список.
func SplitDay(open, close, step time.Duration) ([]time.Duration, error) {
	if step <= 0 {
		return nil, ErrSlotDuration
	}
	if close <= open {
		return []time.Duration{}, nil
	}

	slots := make([]time.Duration, 0, int((close-open)/step))
	for cur := open; cur+step <= close; cur += step {
		slots = append(slots, cur)
	}
	return slots, nil
}

// SplitDayClock: то же, что SplitDay, но в формате HH:MM.
func SplitDayClock(open, close, step time.Duration) ([]string, error) {
	starts, err := SplitDay(open, close, step)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(starts))
	for _, s := range starts {
		out = append(out, FormatClock(s))
	}
	return out, nil
}

// Weekday возвращает день недели даты в нумерации 0 (воскресенье) … 6.
func Weekday(date time.Time) int {
	return int(date.Weekday())
}
