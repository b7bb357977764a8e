package domain

import (
	"encoding/json"
	"time"
)

type Memorable interface {
	ToJson() string
	FromJson(jstr string) error
}

type Memo struct {
	Key  string `json:"key"`
	Memo string `json:"memo"`
}

// DrawMemo remembers when the scheduler last ran a draw, so a restart does not
// trigger an early one, and the commitment of a draw waiting for its entropy.
type DrawMemo struct {
	LastDrawTime time.Time          `json:"last_draw_time"`
	LastWinner   string             `json:"last_winner"`
	Pending      *EntropyCommitment `json:"pending,omitempty"`
	CommitTime   time.Time          `json:"commit_time"`
}

func (obj *DrawMemo) ToJson() string {
	jstr, err := json.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(jstr)
}

func (obj *DrawMemo) FromJson(jstr string) error {
	err := json.Unmarshal([]byte(jstr), obj)
	return err
}

// NextDrawTime returns when the next draw is due given the draw interval. A
// memo without any draw is due immediately.
func (obj *DrawMemo) NextDrawTime(interval time.Duration) time.Time {
	if obj.LastDrawTime.IsZero() {
		return time.Time{}
	}
	return obj.LastDrawTime.Add(interval)
}
