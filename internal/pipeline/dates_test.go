package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPostedAt(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"rfc3339", "2025-08-27T10:30:00Z", "27 Aug 2025"},
		{"rfc3339 with offset", "2025-01-05T09:00:00+05:30", "05 Jan 2025"},
		{"no zone designator", "2025-08-27T10:30:00", "27 Aug 2025"},
		{"date only", "2025-08-27", "27 Aug 2025"},
		{"unparsable falls back to raw", "yesterday", "yesterday"},
		{"placeholder passes through", "N/A", "N/A"},
		{"empty passes through", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatPostedAt(tc.raw))
		})
	}
}
