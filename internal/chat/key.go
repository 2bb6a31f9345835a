package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidKey is returned when a conversation key does not have the
	// "<activity_id>-<user_id>-<user_id>" shape.
	ErrInvalidKey = errors.New("invalid conversation key")
	// ErrForbidden is returned when a user is not one of the two
	// participants named by a conversation key.
	ErrForbidden = errors.New("not a participant of this conversation")
)

// Key derives the canonical conversation key for two users chatting about
// one activity. The lower user id always comes first, so the key is
// independent of who is sender and who is receiver.
func Key(activityID, userA, userB uint64) string {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("%d-%d-%d", activityID, lo, hi)
}

// ParseKey splits a conversation key back into its activity id and the two
// participant ids. Keys must consist of exactly three base-10 integers
// separated by hyphens.
func ParseKey(key string) (activityID, user1, user2 uint64, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return 0, 0, 0, ErrInvalidKey
	}

	ids := make([]uint64, 3)
	for i, part := range parts {
		id, parseErr := strconv.ParseUint(part, 10, 64)
		if parseErr != nil {
			return 0, 0, 0, ErrInvalidKey
		}
		ids[i] = id
	}

	return ids[0], ids[1], ids[2], nil
}

// Authorize parses a key and verifies that userID occupies one of its two
// participant slots. It returns the parsed components so callers do not have
// to parse twice.
func Authorize(key string, userID uint64) (activityID, user1, user2 uint64, err error) {
	activityID, user1, user2, err = ParseKey(key)
	if err != nil {
		return 0, 0, 0, err
	}
	if userID != user1 && userID != user2 {
		return 0, 0, 0, ErrForbidden
	}
	return activityID, user1, user2, nil
}

// OtherParticipant returns the participant of the key that is not userID.
func OtherParticipant(user1, user2, userID uint64) uint64 {
	if userID == user1 {
		return user2
	}
	return user1
}
