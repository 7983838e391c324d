// Package overdueloans projects every loan that is overdue at a point in time, the librarian's follow-up list.
package overdueloans
