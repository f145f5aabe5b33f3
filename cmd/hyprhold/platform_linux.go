//go:build linux

package main

import (
	"io"
	"log"

	"github.com/Danondso/hyprhold/internal/action"
	"github.com/Danondso/hyprhold/internal/bus"
	"github.com/Danondso/hyprhold/internal/chime"
	"github.com/Danondso/hyprhold/internal/config"
	"github.com/Danondso/hyprhold/internal/hotkey"
)

func bindHolds(b *bus.Bus, cfg *config.Config, runner *action.Runner, player *chime.Player, dbg *log.Logger) error {
	return action.Bind(b, cfg, runner, player, dbg)
}

func holdCodes(h config.HoldConfig) ([]int, error) {
	return hotkey.XKBCodes(h.Keys)
}

func openDevice(path string, dbg *log.Logger) (io.ReadCloser, string, error) {
	dev, err := hotkey.FindKeyboard(path)
	if err != nil {
		return nil, "", err
	}
	src := hotkey.NewSource(dev)
	dbg.Printf("keyboard: %s (%s)", src.Keyboard(), dev.Path())
	return src, dev.Path(), nil
}
