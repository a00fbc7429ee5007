// Package translation translates exported text rows through a chat
// completion endpoint. Rows are sent in batches together with a few lines
// of surrounding dialogue as context; each line of the batch is tagged with
// its speaker so the reply can be split back into rows. Invalid replies are
// retried, logged and finally given up on without stopping the run.
//
// Completers exist for OpenAI-compatible endpoints (including local
// servers) and for Gemini. BreakerCompleter stops a run early when the
// endpoint keeps failing.
package translation
