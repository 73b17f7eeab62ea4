package terminal

import "time"

// StatusBoard is a read-only snapshot of the controller, published after
// every tick for the diagnostics surface.
type StatusBoard struct {
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	SensorOK  bool      `json:"sensor_ok"`
	Online    bool      `json:"online"`
	Backlight bool      `json:"backlight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Board returns the latest snapshot.
func (ctl *Controller) Board() StatusBoard {
	if b := ctl.board.Load(); b != nil {
		return *b
	}
	return StatusBoard{}
}

func (ctl *Controller) publish(now time.Time) {
	c := ctl.c
	ctl.board.Store(&StatusBoard{
		Mode:      c.State.Mode.String(),
		Status:    c.Status.String(),
		SensorOK:  c.SensorOK,
		Online:    ctl.d.Online(),
		Backlight: ctl.d.Backlight.On(),
		UpdatedAt: now,
	})
}
