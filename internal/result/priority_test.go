package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPriority(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{500, 1}, {503, 1},
		{409, 2}, {429, 2},
		{404, 3},
		{401, 4}, {403, 4},
		{400, 5}, {413, 5},
		{302, 6},
		{200, 7},
		{101, 8},
		{0, 9}, {700, 9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusPriority(tt.code), "code %d", tt.code)
	}
}

func errWithCode(code int, msg string) Error {
	return New(LayerApplication, code, msg)
}

func TestSelectMain(t *testing.T) {
	tests := []struct {
		name     string
		errs     []Error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "server error beats everything",
			errs:     []Error{errWithCode(400, "a"), errWithCode(404, "b"), errWithCode(500, "c")},
			wantCode: 500, wantMsg: "c",
		},
		{
			name:     "conflict beats not found",
			errs:     []Error{errWithCode(404, "missing"), errWithCode(409, "dup")},
			wantCode: 409, wantMsg: "dup",
		},
		{
			name:     "ties keep the first occurrence",
			errs:     []Error{errWithCode(400, "first"), errWithCode(422, "second"), errWithCode(400, "third")},
			wantCode: 400, wantMsg: "first",
		},
		{
			name:     "conflict and too many requests tie",
			errs:     []Error{errWithCode(429, "slow down"), errWithCode(409, "dup")},
			wantCode: 429, wantMsg: "slow down",
		},
		{
			name:     "missing code counts as server error",
			errs:     []Error{errWithCode(404, "missing"), {Message: "boom", Layer: LayerUnknown}},
			wantCode: 500, wantMsg: "boom",
		},
		{
			name:     "no errors",
			errs:     nil,
			wantCode: 500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectMain(tt.errs)
			assert.Equal(t, tt.wantCode, got.StatusCode())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.Message)
			}
		})
	}
}
