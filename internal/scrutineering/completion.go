package scrutineering

import (
	"math"

	"github.com/google/uuid"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

// CompletionStatus — сводка готовности чек-листа бронирования.
type CompletionStatus struct {
	Total     int
	Completed int
	// Процент закрытых пунктов, округлённый до целого.
	Percentage int
	// Финализировать как passed можно только когда каждый обязательный
	// пункт отмечен со статусом pass. fail или неотмеченный обязательный
	// пункт блокирует pass, но не мешает финализации failed.
	CanFinalizeAsPassed bool
}

// ComputeCompletion считает сводку по шаблонным пунктам и записям прогресса.
// Пункт считается закрытым только со статусом pass.
func ComputeCompletion(
	items []model.ChecklistTemplateItem,
	entries map[uuid.UUID]model.ChecklistProgressEntry,
) CompletionStatus {
	cs := CompletionStatus{Total: len(items)}
	if cs.Total == 0 {
		return cs
	}

	canPass := true
	for _, item := range items {
		entry, ok := entries[item.ID]
		checked := ok && entry.Status == model.ItemStatusPass
		if checked {
			cs.Completed++
		}
		if item.Required && !checked {
			canPass = false
		}
	}

	cs.Percentage = int(math.Round(float64(cs.Completed) / float64(cs.Total) * 100))
	cs.CanFinalizeAsPassed = canPass
	return cs
}
