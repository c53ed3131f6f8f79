// Package dockyard simulates a warehouse loading dock over System V IPC:
// workers produce packages onto a bounded belt, a dispatcher moves them
// onto whichever truck occupies the single dock, trucks cycle through
// arrival/dock/departure/transit, and a terminal lets operators issue
// priority "express" deliveries and administrative commands against a
// shared session table.
package dockyard
