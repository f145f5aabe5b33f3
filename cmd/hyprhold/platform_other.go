//go:build !linux

package main

import (
	"errors"
	"io"
	"log"

	"github.com/Danondso/hyprhold/internal/action"
	"github.com/Danondso/hyprhold/internal/bus"
	"github.com/Danondso/hyprhold/internal/chime"
	"github.com/Danondso/hyprhold/internal/config"
)

var errUnsupported = errors.New("hyprhold requires Linux")

func bindHolds(*bus.Bus, *config.Config, *action.Runner, *chime.Player, *log.Logger) error {
	return errUnsupported
}

func holdCodes(config.HoldConfig) ([]int, error) {
	return nil, errUnsupported
}

func openDevice(string, *log.Logger) (io.ReadCloser, string, error) {
	return nil, "", errUnsupported
}
