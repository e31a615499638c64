package redis

import (
	"fmt"

	"github.com/dicematch/server/internal/model"
)

// Key prefixes for the entities stored in Redis
const (
	profileKeyPrefix    = "dicematch:profile:"
	emailIndexKeyPrefix = "dicematch:email:"
	profileIDCounterKey = "dicematch:profile:next_id"
)

func profileKey(id model.PlayerID) string {
	return fmt.Sprintf("%s%d", profileKeyPrefix, id)
}

func emailIndexKey(email string) string {
	return emailIndexKeyPrefix + email
}
