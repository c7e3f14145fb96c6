// Package transcribe maintains streaming transcription sessions against a
// remote speech-to-text service.
//
// A session starts with a temporary credential from the token service
// (FetchToken), carries raw binary audio frames outbound over a websocket,
// and reduces the inbound partial/final event stream into one live
// transcript (Reducer). Channel exposes the whole thing as an explicit
// state machine with a single Updates stream instead of callback
// registration.
//
// Transport failures terminate the session; there is no automatic
// reconnect or backoff. Callers that want to continue start a new Channel
// with a fresh token.
package transcribe
