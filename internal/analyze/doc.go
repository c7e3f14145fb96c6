// ABOUTME: Package documentation for the analysis client
// ABOUTME: Covers normalization, the job lifecycle, and fallback behavior

// Package analyze submits recorded audio to the hosted speech analysis
// service and retrieves transcript, summary and sentiment.
//
// # Pipeline
//
// A recording is first normalized to 16kHz mono 16-bit WAV (see
// NormalizeWAV), uploaded, and registered as a transcription job with
// summarization and sentiment analysis enabled. The client then polls the
// job until it completes, fails, or the poll timeout elapses.
//
// # Fallbacks
//
// A dedicated summary is requested once the job completes; if that call
// fails or returns an empty response, the job-level summary is used
// instead. A job that reports no sentiment yields the neutral placeholder
// rather than an empty value.
package analyze
