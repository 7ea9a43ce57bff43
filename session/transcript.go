// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
)

// transcriptDomainKey is the BLAKE3 keyed-hash domain for session
// transcripts: the ASCII domain name zero-padded to 32 bytes. Domain
// separation keeps transcript hashes from colliding with any other
// keyed hash of the same bytes.
var transcriptDomainKey = [32]byte{
	'f', 'r', 'a', 'n', 'k', 'e', 'n', 't', 'u', 'i', '.',
	't', 'r', 'a', 'n', 's', 'c', 'r', 'i', 'p', 't',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// TranscriptHash computes the transcript-domain BLAKE3 keyed hash of
// raw session output.
func TranscriptHash(output []byte) [32]byte {
	hasher, err := blake3.NewKeyed(transcriptDomainKey[:])
	if err != nil {
		// NewKeyed fails only on a wrong-sized key.
		panic("session: transcript domain key is invalid: " + err.Error())
	}
	hasher.Write(output)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// TranscriptRef returns the short transcript reference: the "trn-"
// prefix followed by the first 12 hex characters of the transcript
// hash. Used to name transcripts in logs and file paths.
func TranscriptRef(output []byte) string {
	digest := TranscriptHash(output)
	return "trn-" + hex.EncodeToString(digest[:6])
}

// SaveTranscript writes raw session output to path.
func SaveTranscript(path string, output []byte) error {
	if err := os.WriteFile(path, output, 0o644); err != nil {
		return fmt.Errorf("writing transcript %s: %w", path, err)
	}
	return nil
}
