//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// Race builds are slow enough that test suites hit their timeouts at default cost.
	return bcrypt.MinCost
}
