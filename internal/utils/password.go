package utils

import "golang.org/x/crypto/bcrypt"

// HashStationKey returns the bcrypt hash of a scanner station key using
// the given cost.  Used by the provisioning tooling; the server only
// ever stores the hash.
func HashStationKey(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyStationKey safely compares a bcrypt hash and a presented key.
func VerifyStationKey(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
