package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/shiyun/core"
)

// Key prefixes for different data types
const (
	poemRecordPrefix         = "poerec"
	userRecordPrefix         = "usrrec"
	userEmailPrefix          = "usreml"
	userIDSeq                = "usrrecseq"
	agentRecordPrefix        = "agtrec"
	agentIDSeq               = "agtrecseq"
	conversationRecordPrefix = "convrec"
	conversationUserPrefix   = "convusr"
	conversationIDSeq        = "convrecseq"
	messageRecordPrefix      = "msgrec"
	messageConvPrefix        = "msgconv"
	messageIDSeq             = "msgrecseq"
)

// makePoemKey generates a key for a poem by ID.
func makePoemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", poemRecordPrefix, id))
}

// makeUserKey generates a key for a user by ID.
func makeUserKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", userRecordPrefix, id))
}

// makeUserEmailKey generates a key for the email uniqueness index.
// Format: prefix:email
func makeUserEmailKey(email string) []byte {
	return []byte(userEmailPrefix + ":" + email)
}

// makeAgentKey generates a key for an agent by ID.
func makeAgentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", agentRecordPrefix, id))
}

// makeConversationKey generates a key for a conversation by ID.
func makeConversationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", conversationRecordPrefix, id))
}

// makeConversationUserKey generates a composite key for the user index.
// Format: prefix:userID:conversationID
func makeConversationUserKey(userID, conversationID core.ID) []byte {
	prefix := conversationUserPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for userID + 8 bytes for conversationID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(userID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(conversationID))
	return buf
}

// makePartialConversationUserKey generates a partial key for user queries.
// Format: prefix:userID
func makePartialConversationUserKey(userID core.ID) []byte {
	prefix := conversationUserPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for userID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(userID))
	return buf
}

// makeMessageKey generates a key for a message by ID.
func makeMessageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", messageRecordPrefix, id))
}

// makeMessageConvKey generates a composite key for the conversation index.
// Format: prefix:conversationID:timestamp:messageID
func makeMessageConvKey(conversationID core.ID, timestamp time.Time, messageID core.ID) []byte {
	prefix := messageConvPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // 8 bytes each for conversationID, timestamp, and messageID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(conversationID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(messageID))
	return buf
}

// makePartialMessageConvKey generates a partial key for conversation queries.
// Format: prefix:conversationID
func makePartialMessageConvKey(conversationID core.ID) []byte {
	prefix := messageConvPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for conversationID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(conversationID))
	return buf
}
