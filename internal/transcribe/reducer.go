// ABOUTME: Reduces partial/final transcript events into one display string
// ABOUTME: Display = finals joined by spaces, plus a trailing pending partial

package transcribe

import "strings"

// Reducer folds the server's transcript event stream into a single
// live-updating string. Partials are provisional: each one supersedes the
// previous, and a final clears the pending partial while appending itself
// to the permanent segment list. The rule holds for any valid interleaving
// of partials and finals.
type Reducer struct {
	finals  []string
	partial string
}

// Partial records a provisional transcript for the current utterance.
func (r *Reducer) Partial(text string) {
	r.partial = text
}

// Final appends a finalized segment and clears the pending partial.
// Empty finals are skipped but still clear the partial.
func (r *Reducer) Final(text string) {
	if text != "" {
		r.finals = append(r.finals, text)
	}
	r.partial = ""
}

// Transcript returns the current display string: all final segments joined
// with single spaces, followed by the pending partial if one exists.
func (r *Reducer) Transcript() string {
	s := strings.Join(r.finals, " ")
	if r.partial != "" {
		s += " " + r.partial
	}
	return strings.TrimSpace(s)
}

// Finals returns the finalized segments in arrival order.
func (r *Reducer) Finals() []string {
	return r.finals
}
