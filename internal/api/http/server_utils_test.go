package apihttp

import (
	"errors"
	"testing"
)

func TestParseSongID(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"1", 1, true},
		{" 42 ", 42, true},
		{"9223372036854775807", 9223372036854775807, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
	}
	for _, tc := range cases {
		id, err := parseSongID(tc.input)
		if tc.ok && (err != nil || int64(id) != tc.want) {
			t.Errorf("parseSongID(%q) = %d, %v; want %d", tc.input, id, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("parseSongID(%q) succeeded, want error", tc.input)
		}
	}
}

func TestParseByteRange(t *testing.T) {
	const size = 100
	cases := []struct {
		name  string
		value string
		start int64
		end   int64
		ok    bool
	}{
		{"full window", "bytes=0-99", 0, 99, true},
		{"inner window", "bytes=10-20", 10, 20, true},
		{"open ended", "bytes=50-", 50, 99, true},
		{"single byte", "bytes=99-99", 99, 99, true},
		{"case insensitive unit", "Bytes=0-10", 0, 10, true},
		{"spaces tolerated", "bytes= 5 - 9 ", 5, 9, true},
		{"end at size", "bytes=0-100", 0, 0, false},
		{"end past size", "bytes=0-4000", 0, 0, false},
		{"start at size", "bytes=100-", 0, 0, false},
		{"start past size", "bytes=150-160", 0, 0, false},
		{"inverted", "bytes=20-10", 0, 0, false},
		{"negative start", "bytes=-5", 0, 0, false},
		{"garbage", "bytes=abc-def", 0, 0, false},
		{"wrong unit", "bits=0-10", 0, 0, false},
		{"multi range", "bytes=0-1,3-4", 0, 0, false},
		{"empty spec", "bytes=", 0, 0, false},
		{"no dash", "bytes=5", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := parseByteRange(tc.value, size)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if start != tc.start || end != tc.end {
					t.Fatalf("got %d-%d, want %d-%d", start, end, tc.start, tc.end)
				}
				return
			}
			if !errors.Is(err, errUnusableRange) {
				t.Fatalf("err = %v, want errUnusableRange", err)
			}
		})
	}
}

func TestParseByteRangeEmptyFile(t *testing.T) {
	if _, _, err := parseByteRange("bytes=0-0", 0); !errors.Is(err, errUnusableRange) {
		t.Fatalf("err = %v, want errUnusableRange", err)
	}
}
