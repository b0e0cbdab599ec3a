package main

import (
	"fmt"
	"os"
	"strings"

	"plainclass/internal/config"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI решает, рисовать ли прогресс; в stdout-режиме прогресс не нужен
func shouldUseTUI(mode uiMode, outputMode string) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		if outputMode == config.ModeStdout || outputMode == config.ModeDiff {
			return false
		}
		return isTerminal(os.Stderr)
	}
}
