// Package core contains pipeline plumbing: the shared Queue handed between a
// producer and its consumers, the Locomotive worker loop that drains it, and
// process options carried by the context. It holds no business logic.
package core
