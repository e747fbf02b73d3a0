package models

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid id")

// NewID returns a fresh global identifier of an entity of the given type.
func NewID(typeName string) string {
	return EncodeID(typeName, uuid.NewString())
}

// EncodeID returns the global identifier base64("<type>:<id>").
func EncodeID(typeName, id string) string {
	return base64.StdEncoding.EncodeToString([]byte(typeName + ":" + id))
}

// DecodeID splits a global identifier into its type and local id.
func DecodeID(global string) (typeName, id string, err error) {
	raw, err := base64.StdEncoding.DecodeString(global)
	if err != nil {
		return "", "", ErrInvalidID
	}

	typeName, id, ok := strings.Cut(string(raw), ":")
	if !ok || typeName == "" || id == "" {
		return "", "", ErrInvalidID
	}

	return typeName, id, nil
}

// TypeOf returns the type encoded in a global identifier, or "" when it is
// not one.
func TypeOf(global string) string {
	typeName, _, err := DecodeID(global)
	if err != nil {
		return ""
	}

	return typeName
}
