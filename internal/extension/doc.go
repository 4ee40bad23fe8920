// Package extension decides and serializes deadline extensions.
//
// It has two halves. Decide is a pure policy function: given a snapshot
// of an operation's timing state it says whether an automatic extension
// is warranted and, if not, why. Gate is the enforcement layer: every
// attempt to actually mutate a user's deadline, whether it came from the
// policy or from a user-confirmed request, must pass through Gate.Request,
// which guarantees at most one extension lands per contention window.
package extension
