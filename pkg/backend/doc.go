// Package backend is the HTTP client for the conversation collaborator.
//
// # Overview
//
// The collaborator owns conversations: it stores each conversation's
// dependency graph, runs turns against it, and accepts edited snapshots
// back. This package covers that surface:
//
//   - [Client.Login], [Client.CreateConversation], [Client.GetConversation],
//     [Client.GetTurns]: plain JSON endpoints
//   - [Client.SaveGraph]: upload an edited graph snapshot
//   - [Client.StreamTurn]: server-sent events for a streaming turn
//
// JSON endpoints retry transient failures with exponential backoff and
// cache read responses on disk via the httputil cache. Streams are never
// retried; an interrupted stream surfaces as a stream error.
//
// # Turn streams
//
// A turn stream is SSE over a POST body. Blocks are blank-line
// delimited with event: and data: lines; the client dispatches start,
// token, ping, done and error events and treats a stream that closes
// without done as failed. The done payload carries the assistant's full
// text and a fresh graph snapshot, which callers re-normalize before
// use.
//
// [GraphSaver] adapts a Client to the draft engine's Saver interface so
// autosave can push drafts to the collaborator.
package backend
