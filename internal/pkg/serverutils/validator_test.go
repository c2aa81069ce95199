package serverutils

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	type sample struct {
		Name string `validate:"required,max=5"`
	}

	tests := []struct {
		name    string
		input   sample
		wantErr bool
	}{
		{"valid", sample{Name: "ok"}, false},
		{"missing required", sample{}, true},
		{"too long", sample{Name: "toolongvalue"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var fiberErr *fiber.Error
			require.ErrorAs(t, err, &fiberErr)
			assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
		})
	}
}
