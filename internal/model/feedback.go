package model

import (
	"fmt"
	"time"
)

// Feedback is one visitor rating left after a chat.
type Feedback struct {
	Timestamp time.Time `json:"timestamp"`
	Rating    string    `json:"rating"`
	Comment   string    `json:"comment"`
}

// FormatFeedback serializes feedback into the flat feedback log shape.
func FormatFeedback(f Feedback) string {
	return fmt.Sprintf("[%s]\nRating: %s\nComment: %s\n\n",
		f.Timestamp.Format(TimeLayout), FirstLine(f.Rating), FirstLine(f.Comment))
}
