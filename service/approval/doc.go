// Package approval defines the human-in-the-loop approval request lifecycle:
// a request is raised by an agent or workflow node, stays pending until a
// human decision or its deadline passes, and ends in exactly one terminal
// state. The Store contract is the single source of truth for request status;
// all mutation goes through it.
package approval
