package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeSCOMID(t *testing.T) {
	assert.Equal(t, "EGYI-2033-EGOO491-000001", composeSCOMID("EGYI-2033-EGOO491", 1))
	assert.Equal(t, "EGYI-2033-EGOO491-000123", composeSCOMID("EGYI-2033-EGOO491", 123))
	assert.Equal(t, "EGYI-2033-EGOO491-1000000", composeSCOMID("EGYI-2033-EGOO491", 1000000))
}

func TestComposePrefix(t *testing.T) {
	assert.Equal(t, "EGYI-2033-EGOO491", composePrefix("EGYI", "2033", "EGOO491"))
}

func TestNextSequence(t *testing.T) {
	prefix := "EGYI-2033-EGOO491"

	tests := []struct {
		name string
		ids  []string
		want int
	}{
		{
			name: "no existing assets",
			ids:  nil,
			want: 1,
		},
		{
			name: "sequential ids",
			ids:  []string{"EGYI-2033-EGOO491-000001", "EGYI-2033-EGOO491-000002"},
			want: 3,
		},
		{
			name: "gap in sequence continues from max",
			ids:  []string{"EGYI-2033-EGOO491-000001", "EGYI-2033-EGOO491-000007"},
			want: 8,
		},
		{
			name: "other prefixes ignored",
			ids:  []string{"EGYI-2033-OTHER12-000009", "EGYI-2033-EGOO491-000002"},
			want: 3,
		},
		{
			name: "malformed suffixes skipped",
			ids:  []string{"EGYI-2033-EGOO491-legacy", "EGYI-2033-EGOO491-00x001", "EGYI-2033-EGOO491-000004"},
			want: 5,
		},
		{
			name: "all malformed starts at one",
			ids:  []string{"EGYI-2033-EGOO491-legacy"},
			want: 1,
		},
		{
			name: "unpadded suffix still counts",
			ids:  []string{"EGYI-2033-EGOO491-42"},
			want: 43,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextSequence(tt.ids, prefix))
		})
	}
}

func TestGenerateThenNextIsSequential(t *testing.T) {
	prefix := composePrefix("EGYI", "2033", "EGOO491")

	ids := []string{}
	first := composeSCOMID(prefix, nextSequence(ids, prefix))
	assert.Equal(t, "EGYI-2033-EGOO491-000001", first)

	ids = append(ids, first)
	second := composeSCOMID(prefix, nextSequence(ids, prefix))
	assert.Equal(t, "EGYI-2033-EGOO491-000002", second)
}
