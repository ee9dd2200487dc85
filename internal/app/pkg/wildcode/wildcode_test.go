package wildcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		article string
		want    string
	}{
		{"plain wild code", "wild123", "wild123"},
		{"wild with size suffix", "wild123/M", "wild123"},
		{"wild with dash suffix", "wild77-black", "wild77"},
		{"alphabetic article passes through", "basic tee", "basic tee"},
		{"non-wild numeric article unchanged", "sku12345", "sku12345"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.article))
		})
	}
}
