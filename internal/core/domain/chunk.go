package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkKeySeparator separates the fields of an encoded chunk key.
const ChunkKeySeparator = "|"

// ChunkRef identifies a chunk stored in the vector index.
// The canonical identity is (DocumentID, Sequence); Title is carried for display.
type ChunkRef struct {
	Title      string
	DocumentID string
	Sequence   int
}

// Key encodes the reference as "title|document_id|sequence".
func (r ChunkRef) Key() string {
	return r.Title + ChunkKeySeparator + r.DocumentID + ChunkKeySeparator + strconv.Itoa(r.Sequence)
}

// ParseChunkKey decodes a key produced by ChunkRef.Key.
// Only the last two separators are significant, so titles may contain "|".
func ParseChunkKey(key string) (ChunkRef, error) {
	last := strings.LastIndex(key, ChunkKeySeparator)
	if last < 0 {
		return ChunkRef{}, fmt.Errorf("%w: chunk key %q has no separator", ErrInvalidInput, key)
	}
	head, seqPart := key[:last], key[last+1:]

	mid := strings.LastIndex(head, ChunkKeySeparator)
	if mid < 0 {
		return ChunkRef{}, fmt.Errorf("%w: chunk key %q has no document id", ErrInvalidInput, key)
	}
	title, docID := head[:mid], head[mid+1:]

	if docID == "" {
		return ChunkRef{}, fmt.Errorf("%w: chunk key %q has an empty document id", ErrInvalidInput, key)
	}
	seq, err := strconv.Atoi(seqPart)
	if err != nil || seq < 0 {
		return ChunkRef{}, fmt.Errorf("%w: chunk key %q has a bad sequence %q", ErrInvalidInput, key, seqPart)
	}

	return ChunkRef{Title: title, DocumentID: docID, Sequence: seq}, nil
}
