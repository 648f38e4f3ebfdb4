package ui

// RenderDialPanel wraps dial content with a styled border.
// The dial itself is drawn by the radar package.
func RenderDialPanel(width, height int, dialContent, legend string) string {
	content := dialContent + "\n" + legend
	return StylePanelBorder.Width(width - 2).Height(height - 2).Render(content)
}
