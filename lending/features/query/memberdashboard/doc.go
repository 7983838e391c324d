// Package memberdashboard projects what a member currently has: loans with their due dates,
// overdue loans, active reservations and the number of books returned so far.
//
// Statuses are evaluated at the query's instant without being persisted, so a loan past its
// due date shows up as overdue even if no sweep has marked it yet.
package memberdashboard
