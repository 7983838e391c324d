// Package librarystats projects the manager's view of the library: totals and the most borrowed books.
package librarystats
