package indicator

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	apperrors "trayping/internal/errors"
	"trayping/internal/models"
)

// Icons holds the raw image bytes for every icon state.
type Icons struct {
	Reachable   []byte
	Unreachable []byte
	Paused      []byte
}

// IconExt is the icon file extension the tray expects on this platform.
func IconExt() string {
	if runtime.GOOS == "windows" {
		return ".ico"
	}
	return ".png"
}

// LoadIcons reads green, red and yellow icons from dir. A missing file is a
// startup failure.
func LoadIcons(dir string) (Icons, error) {
	var icons Icons
	files := []struct {
		name string
		dst  *[]byte
	}{
		{"green", &icons.Reachable},
		{"red", &icons.Unreachable},
		{"yellow", &icons.Paused},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name+IconExt())
		data, err := os.ReadFile(path)
		if err != nil {
			return Icons{}, apperrors.Wrap(apperrors.ErrAssetMissing, "IconMissing", fmt.Sprintf("%s: %v", path, err))
		}
		if len(data) == 0 {
			return Icons{}, apperrors.Wrap(apperrors.ErrAssetMissing, "IconEmpty", path)
		}
		*f.dst = data
	}
	return icons, nil
}

// For returns the bytes for state.
func (i Icons) For(state models.IconState) []byte {
	switch state {
	case models.IconReachable:
		return i.Reachable
	case models.IconPaused:
		return i.Paused
	default:
		return i.Unreachable
	}
}
