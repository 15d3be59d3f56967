package httpx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type registerInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_strength"`
}

func TestValidateStruct_ValidInput(t *testing.T) {
	s := registerInput{Name: "Ada", Email: "ada@example.com", Password: "Test123!@#"}
	assert.Empty(t, ValidateStruct(s))
}

func TestValidateStruct_RequiredFields(t *testing.T) {
	details := ValidateStruct(registerInput{})

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields["name"], "required")
	assert.Contains(t, fields["email"], "required")
	assert.Contains(t, fields["password"], "required")
}

func TestValidateStruct_EmailFormat(t *testing.T) {
	details := ValidateStruct(registerInput{Name: "Ada", Email: "invalid-email", Password: "Test123!@#"})
	if assert.Len(t, details, 1) {
		assert.Equal(t, "email", details[0].Field)
		assert.True(t, strings.Contains(details[0].Message, "valid email"))
	}
}

func TestValidateStruct_PasswordStrength(t *testing.T) {
	testCases := []struct {
		password string
		valid    bool
	}{
		{"Test123!@#", true},
		{"test123!@#", false},
		{"TEST123!@#", false},
		{"TestABC!@#", false},
		{"Test12345", false},
		{"Te1!", false},
	}

	for _, tc := range testCases {
		t.Run(tc.password, func(t *testing.T) {
			details := ValidateStruct(registerInput{Name: "Ada", Email: "ada@example.com", Password: tc.password})
			assert.Equal(t, tc.valid, len(details) == 0)
		})
	}
}
