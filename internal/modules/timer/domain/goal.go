package domain

import "fmt"

// Goal is the round length entered by the user.
type Goal struct {
	Hours   int
	Minutes int
	Seconds int
}

func (g Goal) TotalSeconds() int {
	return g.Hours*3600 + g.Minutes*60 + g.Seconds
}

func (g Goal) Startable() bool {
	return g.TotalSeconds() > 0
}

func (g Goal) Validate() error {
	if g.Hours < 0 || g.Minutes < 0 || g.Seconds < 0 {
		return fmt.Errorf("goal fields must be non-negative, got %dh %dm %ds", g.Hours, g.Minutes, g.Seconds)
	}
	return nil
}
