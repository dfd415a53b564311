// Package duration renders raw durations as compact labels such as "5s",
// "3m" or "2h".
//
// Each stage converts to the next coarser unit with floor division and
// keeps it while the value stays at or below 120. Seconds above 120 become
// minutes, minutes above 120 become hours. Hours are not promoted further.
//
// Negative input is not clamped: floor division is applied as is, so
// -1500ms renders as "-2s". Callers that show time remaining until a past
// instant will see a negative label.
package duration
