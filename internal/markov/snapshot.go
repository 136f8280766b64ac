package markov

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// Snapshot is the structural export of a Model: its parameters plus the
// transition table. It is the unit the binary codec works on.
type Snapshot struct {
	Order            int
	MinWords         int
	CaseSensitive    bool
	StripPunctuation bool
	Table            map[string]map[string]uint32
}

// Binary layout: magic, uvarint order, flag byte, uvarint minWords,
// uvarint context count, then per context a length-prefixed key,
// uvarint successor count and length-prefixed token / uvarint count
// pairs. Contexts and successors are written in sorted order so equal
// snapshots encode to equal bytes.
var snapshotMagic = []byte("MMK1")

const (
	flagCaseSensitive    = 1 << 0
	flagStripPunctuation = 1 << 1

	// Upper bounds rejected as malformed on decode. A chat user's table
	// stays far below these.
	maxContexts   = 1 << 24
	maxSuccessors = 1 << 20
	maxTokenLen   = 1 << 16
)

// Encode serializes a snapshot to its compact binary form.
func Encode(s Snapshot) []byte {
	var buf bytes.Buffer
	buf.Write(snapshotMagic)
	writeUvarint(&buf, uint64(s.Order))

	var flags byte
	if s.CaseSensitive {
		flags |= flagCaseSensitive
	}
	if s.StripPunctuation {
		flags |= flagStripPunctuation
	}
	buf.WriteByte(flags)

	writeUvarint(&buf, uint64(s.MinWords))
	writeUvarint(&buf, uint64(len(s.Table)))

	keys := make([]string, 0, len(s.Table))
	for key := range s.Table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		successors := s.Table[key]
		writeString(&buf, key)
		writeUvarint(&buf, uint64(len(successors)))

		tokens := make([]string, 0, len(successors))
		for tok := range successors {
			tokens = append(tokens, tok)
		}
		sort.Strings(tokens)

		for _, tok := range tokens {
			writeString(&buf, tok)
			writeUvarint(&buf, uint64(successors[tok]))
		}
	}
	return buf.Bytes()
}

// Decode parses a binary snapshot. Malformed, truncated or empty input
// yields the zero snapshot rather than an error: persisted state is
// best-effort and absence means "empty model".
func Decode(data []byte) Snapshot {
	s, err := decode(data)
	if err != nil {
		return Snapshot{}
	}
	return s
}

func decode(data []byte) (Snapshot, error) {
	r := bytes.NewReader(data)

	header := make([]byte, len(snapshotMagic))
	if _, err := r.Read(header); err != nil || !bytes.Equal(header, snapshotMagic) {
		return Snapshot{}, fmt.Errorf("bad magic")
	}

	order, err := binary.ReadUvarint(r)
	if err != nil || order < 1 || order > 64 {
		return Snapshot{}, fmt.Errorf("bad order")
	}

	flags, err := r.ReadByte()
	if err != nil {
		return Snapshot{}, err
	}

	minWords, err := binary.ReadUvarint(r)
	if err != nil {
		return Snapshot{}, err
	}

	contextCount, err := binary.ReadUvarint(r)
	if err != nil || contextCount > maxContexts {
		return Snapshot{}, fmt.Errorf("bad context count")
	}

	table := make(map[string]map[string]uint32, contextCount)
	for i := uint64(0); i < contextCount; i++ {
		key, err := readString(r)
		if err != nil {
			return Snapshot{}, err
		}

		successorCount, err := binary.ReadUvarint(r)
		if err != nil || successorCount < 1 || successorCount > maxSuccessors {
			return Snapshot{}, fmt.Errorf("bad successor count")
		}

		successors := make(map[string]uint32, successorCount)
		for j := uint64(0); j < successorCount; j++ {
			tok, err := readString(r)
			if err != nil {
				return Snapshot{}, err
			}
			count, err := binary.ReadUvarint(r)
			if err != nil || count < 1 || count > 1<<32-1 {
				return Snapshot{}, fmt.Errorf("bad count")
			}
			successors[tok] = uint32(count)
		}
		table[key] = successors
	}

	if r.Len() != 0 {
		return Snapshot{}, fmt.Errorf("trailing data")
	}

	return Snapshot{
		Order:            int(order),
		MinWords:         int(minWords),
		CaseSensitive:    flags&flagCaseSensitive != 0,
		StripPunctuation: flags&flagStripPunctuation != 0,
		Table:            table,
	}, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil || n > maxTokenLen {
		return "", fmt.Errorf("bad string length")
	}
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
