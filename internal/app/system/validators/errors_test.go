package validators

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestUnsupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no such command code", mongo.CommandError{Code: 59}, true},
		{"not implemented code", mongo.CommandError{Code: 115}, true},
		{"phrase only", errors.New("collMod not supported on this server"), true},
		{"namespace exists", mongo.CommandError{Code: 48, Message: "collection already exists"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unsupported(tt.err); got != tt.want {
				t.Errorf("unsupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
