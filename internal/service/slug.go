package service

import (
	"io"
	"iter"
)

const slugCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// rejectAbove drops bytes that would bias the modulo towards the first characters
const rejectAbove = 256 - 256%len(slugCharset)

// SlugCandidates yields up to budget random slugs read from src.
// The length starts at length and grows by one every widenEvery candidates.
// Each range over the sequence starts over, so it can be retried.
func SlugCandidates(src io.Reader, length, budget, widenEvery int) iter.Seq[string] {
	if widenEvery < 1 {
		widenEvery = 1
	}
	return func(yield func(string) bool) {
		for i := range budget {
			slug, err := randomSlug(src, length+i/widenEvery)
			if err != nil {
				return
			}
			if !yield(slug) {
				return
			}
		}
	}
}

func randomSlug(src io.Reader, length int) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, length*2)

	for len(out) < length {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, slugCharset[int(b)%len(slugCharset)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
