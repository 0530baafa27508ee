package main

import (
	"os"
	"path/filepath"

	"trayping/internal/config"
	"trayping/internal/heartbeat"
	"trayping/internal/indicator"
)

// loadAssets reads the icons and the heartbeat clip. Either one missing is
// fatal.
func loadAssets(cfg config.Config) (indicator.Icons, *heartbeat.Player, error) {
	icons, err := indicator.LoadIcons(resolveAsset(cfg.IconsDir))
	if err != nil {
		return indicator.Icons{}, nil, err
	}
	player, err := heartbeat.Load(resolveAsset(cfg.Heartbeat.Sound), cfg.Heartbeat.Volume)
	if err != nil {
		return indicator.Icons{}, nil, err
	}
	return icons, player, nil
}

// resolveAsset looks a relative path up in the working directory first and
// next to the executable second.
func resolveAsset(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return path
	}
	candidate := filepath.Join(filepath.Dir(exe), path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}
