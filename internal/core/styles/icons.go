package styles

// Status glyphs printed by the reviewer.
var (
	IconApproved = "✓"
	IconSkipped  = "→"
	IconMissing  = "✗"
	IconWarning  = "!"
)
