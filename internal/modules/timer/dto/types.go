package dto

type ConfigureInput struct {
	Hours   int
	Minutes int
	Seconds int
}

type StatusOutput struct {
	Instance      string
	Phase         string
	Round         int
	GoalSec       int
	ElapsedSec    int
	RemainingText string
	AlarmActive   bool
	RenderFrozen  bool
}
