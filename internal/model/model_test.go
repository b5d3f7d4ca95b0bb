package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"lost", KindLost, false},
		{"LOST", KindLost, false},
		{"Found", KindFound, false},
		{"", "", true},
		{"stolen", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.True(t, IsKind(err, KindInvalidArgument), "ParseKind(%q) error = %v", tt.in, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidItemStatus(t *testing.T) {
	for _, s := range ItemStatuses {
		assert.True(t, ValidItemStatus(s), s)
	}
	assert.False(t, ValidItemStatus("approved"))
	assert.False(t, ValidItemStatus(""))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading item: %w", NotFoundf("item %d not found", 7))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "loading item: item 7 not found", err.Error())

	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("disk on fire")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"123456", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		assert.Equal(t, tt.wantErr, err != nil, "ValidatePassword(%q) error = %v", tt.password, err)
	}
}

func TestEventDate(t *testing.T) {
	lost := &Item{Kind: KindLost, LostDetails: &LostDetails{}}
	assert.True(t, lost.EventDate().IsZero())

	empty := &Item{}
	assert.True(t, empty.EventDate().IsZero())
}
