package domain

// ButtonID is the callback state carried by an interactive control.
// It is rebuilt from the control's custom id when the control is activated.
type ButtonID struct {
	Author     string
	PostID     string
	MessageID  string
	Resolution Resolution
}

// Post returns the post the button refers to.
func (b ButtonID) Post() PostRef {
	return PostRef{Author: b.Author, PostID: b.PostID}
}
