package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	letterBytes  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberBytes  = "0123456789"
	alphanumeric = letterBytes + numberBytes
)

func GenerateRandomString(length int) string {
	return generateRandom(length, alphanumeric)
}

func GenerateRandomNumericString(length int) string {
	return generateRandom(length, numberBytes)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

// GenerateCaseNumber builds a human-readable case reference, e.g. RC-240831-4F7K2.
func GenerateCaseNumber() string {
	return fmt.Sprintf("RC-%s-%s", time.Now().Format("060102"), generateRandom(5, "ABCDEFGHJKMNPQRSTUVWXYZ23456789"))
}
