package domain

// Quote is a short text with its author attribution.
type Quote struct {
	Text   string
	Author string
}
