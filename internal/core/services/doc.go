// Package services implements the application's core business logic.
// Services implement the driving port interfaces and depend only on
// driven port interfaces, never on concrete adapters.
package services
