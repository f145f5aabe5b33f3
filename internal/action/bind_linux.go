//go:build linux

package action

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Danondso/hyprhold/internal/bus"
	"github.com/Danondso/hyprhold/internal/config"
	"github.com/Danondso/hyprhold/internal/event"
	"github.com/Danondso/hyprhold/internal/hotkey"
)

// Submitter accepts jobs without blocking. *Runner implements it.
type Submitter interface {
	Submit(Job) bool
}

// Chime plays hold feedback tones. *chime.Player implements it.
type Chime interface {
	PlayStart()
	PlayStop()
}

// binder holds the state shared by the handlers of every configured hold.
// All of it is touched only from the bus loop.
type binder struct {
	runner Submitter
	chime  Chime
	logger *log.Logger

	submap     string
	suppressed map[string]bool
}

// Bind registers every hold in cfg on b. Commands go to runner. chime may
// be nil. A hold whose start was skipped because a submap was active also
// skips its end, so toggling commands stay balanced.
func Bind(b *bus.Bus, cfg *config.Config, runner Submitter, chime Chime, dbg *log.Logger) error {
	if dbg == nil {
		dbg = log.New(io.Discard, "", 0)
	}
	bd := &binder{
		runner:     runner,
		chime:      chime,
		logger:     dbg,
		suppressed: make(map[string]bool),
	}

	b.OnSubmap(func(s event.Submap) {
		if s.Map != bd.submap {
			dbg.Printf("bus: submap %q", s.Map)
		}
		bd.submap = s.Map
	})

	for _, h := range cfg.Holds {
		if err := bd.bind(b, h); err != nil {
			return err
		}
	}
	return nil
}

func (bd *binder) bind(b *bus.Bus, h config.HoldConfig) error {
	codes, err := hotkey.XKBCodes(h.Keys)
	if err != nil {
		return fmt.Errorf("hold %q: %w", h.ID, err)
	}
	filter := hotkey.Filter(h.Keyboard, codes...)
	timeout := time.Duration(h.TimeoutSec) * time.Second

	start := func(keyboard string, code int) {
		if h.OnlyWithoutSubmap && bd.submap != "" {
			bd.logger.Printf("action %s: submap %q active, skipping", h.ID, bd.submap)
			bd.suppressed[h.ID] = true
			return
		}
		if h.Chime && bd.chime != nil {
			bd.chime.PlayStart()
		}
		bd.submit(Job{Hold: h.ID, Phase: PhaseStart, Command: h.OnStart, Keyboard: keyboard, Code: code, Timeout: timeout})
	}
	end := func(keyboard string, code int) {
		if bd.suppressed[h.ID] {
			delete(bd.suppressed, h.ID)
			return
		}
		if h.Chime && bd.chime != nil {
			bd.chime.PlayStop()
		}
		bd.submit(Job{Hold: h.ID, Phase: PhaseEnd, Command: h.OnEnd, Keyboard: keyboard, Code: code, Timeout: timeout})
	}

	if err := b.OnHoldStart(h.ID, h.Threshold(), filter, start); err != nil {
		return fmt.Errorf("hold %q: %w", h.ID, err)
	}
	if err := b.OnHoldEnd(h.ID, end); err != nil {
		return fmt.Errorf("hold %q: %w", h.ID, err)
	}

	if h.ExtendOnOtherKeys {
		b.OnKeydown(func(kd event.Keydown) {
			if filter(kd.Keyboard, kd.Code) {
				return
			}
			if b.ExtendHold(h.ID) {
				bd.logger.Printf("hold %s: extended by %s", h.ID, hotkey.CodeName(hotkey.EvdevCode(kd.Code)))
			}
		})
	}
	return nil
}

func (bd *binder) submit(j Job) {
	if j.Command == "" {
		return
	}
	bd.runner.Submit(j)
}
