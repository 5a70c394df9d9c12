// Package chat implements the conversational workflow engine.
//
// The Orchestrator type runs a single turn of a conversation: it resolves
// the conversation and its agent, assembles the model prompt from the agent
// system prompt, recent history, and optionally retrieved poems, persists
// the user message, calls the chat model, and persists the assistant reply.
//
// Two workflows are supported, selected by the agent configuration:
//   - rag_chat grounds each turn with poems retrieved for the user input
//   - poetry_game runs on conversation history alone, with a deep history
//     window and no retrieval
//
// A turn is durable: the user message is written before the model call, so
// a model failure never loses the user's input. The user message stays
// pending until the paired assistant reply is durably written.
package chat
