package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位小写十六进制，够用且对 varchar(32) 友好
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
