package cli

import (
	"fmt"
	"strings"
)

const bannerDefaultWidth = 56

// PrintBanner renders a box-drawing banner around a title. The banner grows
// to fit titles wider than the default width.
func PrintBanner(title string) {
	inner := bannerDefaultWidth - 2
	if len(title)+2 > inner {
		inner = len(title) + 2
	}

	topBottom := strings.Repeat("═", inner)

	fmt.Printf("╔%s╗\n", topBottom)
	fmt.Printf("║%s║\n", padCenter(title, inner))
	fmt.Printf("╚%s╝\n", topBottom)
}

func padCenter(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	padTotal := width - len(text)
	left := padTotal / 2
	right := padTotal - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}
