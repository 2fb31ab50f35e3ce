package scrutineering

import "github.com/Leganyst/scrutineering-core/internal/model"

// Таблица допустимых переходов статуса бронирования.
// completed, cancelled и no_show — терминальные.
var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingStatusUpcoming: {
		model.BookingStatusOngoing,
		model.BookingStatusCancelled,
		model.BookingStatusNoShow,
	},
	model.BookingStatusOngoing: {
		model.BookingStatusCompleted,
		model.BookingStatusCancelled,
	},
}

// CanTransition сообщает, допустим ли переход from -> to.
func CanTransition(from, to model.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal — из статуса нет ни одного перехода.
func IsTerminal(s model.BookingStatus) bool {
	return len(transitions[s]) == 0
}
