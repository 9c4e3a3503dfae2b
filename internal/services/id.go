package services

import "github.com/google/uuid"

func newLeadID() string {
	return uuid.NewString()
}
