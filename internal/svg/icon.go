package svg

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed icons/*.svg
var iconFiles embed.FS

// iconName maps a room type to its icon file stem. Hyphens are dropped,
// matching the asset naming of the source drawings.
func iconName(roomType string) string {
	if roomType == "" {
		return "generico"
	}
	return strings.ReplaceAll(roomType, "-", "")
}

// LoadIcon returns the SVG markup of the icon for a room type, with the
// requested width and height injected on the root element. Unknown types
// fall back to the generic icon.
func LoadIcon(roomType string, width, height int) (string, error) {
	name := iconName(roomType)
	data, err := iconFiles.ReadFile("icons/" + name + ".svg")
	if err != nil {
		data, err = iconFiles.ReadFile("icons/generico.svg")
		if err != nil {
			return "", fmt.Errorf("loading icon %q: %w", name, err)
		}
	}

	markup := string(data)
	// Icons are authored with a viewBox only; size them here.
	sized := strings.Replace(markup, "<svg ",
		fmt.Sprintf(`<svg width="%d" height="%d" `, width, height), 1)
	return strings.TrimSpace(sized), nil
}

// IconTransform centers a scaled icon of the given base size on (cx, cy).
func IconTransform(cx, cy, width, height, scale float64) string {
	tx := cx - width*scale/2
	ty := cy - height*scale/2
	return fmt.Sprintf("translate(%s, %s) scale(%s)", trimFloat(tx), trimFloat(ty), trimFloat(scale))
}
