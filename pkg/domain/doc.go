// Package domain holds the shared types of the grading console core:
// the error taxonomy of the tool-server RPC layer and the decoded
// tool-call result model.
package domain
