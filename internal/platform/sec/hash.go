// Copyright (c) 2026 Taskora. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt cost factor. The policy floor is 10; we run
// at 12 to keep offline cracking expensive on current hardware.
const passwordHashCost = 12

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// Hashing is the only legal way to persist a password; no code path stores
// or logs the plaintext.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version
// in constant time. An empty hash always fails.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	if existingHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
