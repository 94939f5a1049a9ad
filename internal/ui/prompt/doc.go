// Package prompt provides simple interactive prompts.
//
// The prompts render to stderr so stdout remains available for piping
// (e.g., git checkout $(tix branch ENG-123) works correctly).
//
// Available prompts:
//   - [Confirm]: Yes/No confirmation prompt
//   - [Select]: Single selection from a list
package prompt
