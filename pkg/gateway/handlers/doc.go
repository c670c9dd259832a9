// Package handlers implements the gateway's route handlers.
//
// Every handler is a struct with a New constructor and a ServeHTTP
// method, wired to the mux by the server. The collaborators arrive
// through Deps; the upstream client is consumed through the narrow
// ProviderClient interface so tests can substitute it.
//
// The metadata routes (search, info, trending) answer with the JSON
// envelopes from the gateway package. The relay routes (stream,
// download) share one resolve-select-open sequence and hand the opened
// byte stream to the relay package; how the response ends then depends
// on the relay outcome:
//
//   - Completed and ClientGone settle quietly.
//   - FailedBeforeBody still writes the JSON error envelope, since no
//     header has been sent.
//   - AbortedMidStream panics with http.ErrAbortHandler after
//     journaling the error, tearing the connection down without a
//     trailing body.
//
// Handlers never write the X-RateLimit-* family or touch the request
// journal record directly; they contribute through the middleware
// package's SetMediaID and SetJournalError helpers.
package handlers
