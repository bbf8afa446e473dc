package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRecipientList(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		groups   [][]string
		expected []string
	}{
		{
			name:     "operator only",
			operator: "ops@news.example",
			expected: []string{"ops@news.example"},
		},
		{
			name:     "dedup across groups",
			operator: "ops@news.example",
			groups: [][]string{
				{"a@x.example", "b@x.example"},
				{"b@x.example", "c@x.example"},
			},
			expected: []string{"ops@news.example", "a@x.example", "b@x.example", "c@x.example"},
		},
		{
			name:     "empty addresses dropped",
			operator: "ops@news.example",
			groups: [][]string{
				{"", "a@x.example", ""},
			},
			expected: []string{"ops@news.example", "a@x.example"},
		},
		{
			name:   "empty operator dropped",
			groups: [][]string{{"a@x.example"}},
			expected: []string{"a@x.example"},
		},
		{
			name:     "operator duplicated in followers",
			operator: "ops@news.example",
			groups:   [][]string{{"ops@news.example"}},
			expected: []string{"ops@news.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildRecipientList(tt.operator, tt.groups...)
			assert.Equal(t, tt.expected, got)
		})
	}
}
