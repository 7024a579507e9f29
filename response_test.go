package floodr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_Ok(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want bool
	}{
		{"2xx no error", Response{StatusCode: 200}, true},
		{"edge of range", Response{StatusCode: 299}, true},
		{"3xx not ok", Response{StatusCode: 301}, false},
		{"404 not ok", Response{StatusCode: 404}, false},
		{"zero status", Response{StatusCode: 0}, false},
		{"2xx but error set", Response{StatusCode: 200, Error: "transport error: timeout"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Ok())
		})
	}
}

func TestResponse_RaiseForStatus(t *testing.T) {
	assert.NoError(t, Response{StatusCode: 200}.RaiseForStatus())
	assert.Error(t, Response{StatusCode: 404}.RaiseForStatus())
	assert.Error(t, Response{StatusCode: 0, Error: "transport error: dial failed"}.RaiseForStatus())
}
