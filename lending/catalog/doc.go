// Package catalog decides the two administrative commands that create the records lending works on:
// adding a book to the catalog and registering a member.
//
// Both are pure decide functions over the event history. They are idempotent: deciding a command
// for a book or member that already exists yields no event.
package catalog
