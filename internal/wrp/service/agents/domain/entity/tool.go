package entity

// ToolResult is the classified outcome of one tool call. RawText is what
// the synthesis phase sees.
type ToolResult struct {
	Name    string `json:"name"`
	RawText string `json:"raw_text"`
	IsError bool   `json:"is_error"`

	// Output is the tool's own text before classification. It only feeds
	// the verbose trace.
	Output string `json:"-"`

	// Cause is set when the call itself failed.
	Cause error `json:"-"`
}
