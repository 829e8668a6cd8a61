package availability

import (
	"time"

	"fitslot/internal/gym"
	"fitslot/internal/scheduling"
)

// TrainerAvailability is one recurring weekly window. Several rows for the same
// trainer and weekday are independent windows.
type TrainerAvailability struct {
	ID          int                  `db:"id" json:"id"`
	TrainerID   int                  `db:"trainer_id" json:"trainer_id"`
	DayOfWeek   time.Weekday         `db:"day_of_week" json:"day_of_week"`
	StartMinute scheduling.TimeOfDay `db:"start_minute" json:"start"`
	EndMinute   scheduling.TimeOfDay `db:"end_minute" json:"end"`
	IsActive    bool                 `db:"is_active" json:"is_active"`
}

func (a TrainerAvailability) Window() scheduling.Interval {
	return scheduling.Interval{Start: a.StartMinute, End: a.EndMinute}
}

type WindowView struct {
	TrainerAvailability
	DayName string `json:"day_name"`
}

func viewOf(a TrainerAvailability) WindowView {
	return WindowView{TrainerAvailability: a, DayName: a.DayOfWeek.String()}
}

// AvailableTrainer is an active trainer together with the windows they work on one weekday.
type AvailableTrainer struct {
	gym.Trainer
	FullName string                `json:"full_name"`
	Windows  []scheduling.Interval `json:"windows"`
}

type trainerWindowRow struct {
	gym.Trainer
	StartMinute scheduling.TimeOfDay `db:"start_minute"`
	EndMinute   scheduling.TimeOfDay `db:"end_minute"`
}

// groupByTrainer folds one-row-per-window results into one entry per trainer,
// keeping the row order.
func groupByTrainer(rows []trainerWindowRow) []AvailableTrainer {
	out := make([]AvailableTrainer, 0, len(rows))
	index := make(map[int]int, len(rows))
	for _, row := range rows {
		i, ok := index[row.ID]
		if !ok {
			i = len(out)
			index[row.ID] = i
			out = append(out, AvailableTrainer{Trainer: row.Trainer, FullName: row.FullName()})
		}
		out[i].Windows = append(out[i].Windows, scheduling.Interval{Start: row.StartMinute, End: row.EndMinute})
	}
	return out
}

type AvailableTrainersResponse struct {
	Date      string             `json:"date"`
	DayOfWeek string             `json:"day_of_week"`
	Trainers  []AvailableTrainer `json:"trainers"`
}
