// Package hook stores event subscriptions for the objects that emit them.
//
// Every emitting object owns a [List]; every registration is represented by
// a [Hook] handle the subscriber keeps. The list is a slot arena linked by
// indexes rather than pointers: removal is an O(1) splice, a freed slot
// bumps a generation counter, and a stale handle whose slot was reused is
// recognized and ignored instead of corrupting a later registration.
//
// The contract around removal is strict and order matters:
//
//  1. the hook is spliced out, so no dispatch can reach it again,
//  2. the hook's Removed finalizer runs,
//  3. the handle reads as detached.
//
// [List.Dispatch] tolerates the re-entrancy event emission creates: a
// callback may remove its own hook, remove any other hook, append new ones,
// or clear the list, and the walk stays sound. Lists are single-context
// objects; they are driven from the owning loop and are not safe for
// concurrent use.
package hook
