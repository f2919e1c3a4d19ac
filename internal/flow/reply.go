// Package flow implements the conversation state tracker: it turns chat
// events (menu callbacks, free text, candidate selections) into session
// mutations and channel-agnostic replies.
package flow

// Button is one inline choice. Exactly one of Data (callback) or URL is set.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Reply is what the chat surface should send back: text plus button rows.
// Edit asks the surface to edit the triggering message in place instead of
// sending a new one.
type Reply struct {
	Text string
	Rows [][]Button
	Edit bool
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && len(r.Rows) == 0
}

func btn(label, data string) Button   { return Button{Label: label, Data: data} }
func urlBtn(label, url string) Button { return Button{Label: label, URL: url} }
func row(buttons ...Button) []Button  { return buttons }
func rows(rs ...[]Button) [][]Button  { return rs }
