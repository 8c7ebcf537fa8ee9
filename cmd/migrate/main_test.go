package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"password hidden", "postgres://portfolio:s3cret@db:5432/portfolio", "postgres://portfolio:xxxxx@db:5432/portfolio"},
		{"no password", "postgres://db:5432/portfolio", "postgres://db:5432/portfolio"},
		{"not a url", "host=db password=s3cret", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskDatabaseURL(tt.raw))
		})
	}
}
