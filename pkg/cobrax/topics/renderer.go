package topics

// Renderer formats topic content for display
type Renderer interface {
	// Render formats content; format is the topic file's extension
	Render(content string, format string) string
}

// PlainRenderer prints topics as written
type PlainRenderer struct{}

// Render returns content unchanged
func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
