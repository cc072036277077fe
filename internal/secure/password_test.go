// SPDX-License-Identifier: MPL-2.0

package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskPassword_ConcreteScenario(t *testing.T) {
	got := MaskPassword("echo mySecretPass123 | sudo -S ls", "mySecretPass123")
	assert.Equal(t, "echo ***MASKED*** | sudo -S ls", got)
}

func TestMaskPassword_NotPresent(t *testing.T) {
	got := MaskPassword("echo hello", "nope")
	assert.Equal(t, "echo hello", got)
}

func TestMaskPassword_EmptyPassword(t *testing.T) {
	got := MaskPassword("echo hello", "")
	assert.Equal(t, "echo hello", got)
}

func TestValidatePassword_Weak(t *testing.T) {
	result := ValidatePassword("weak")
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Issues, "Password should be at least 8 characters long")
}

func TestValidatePassword_Strong(t *testing.T) {
	result := ValidatePassword("Str0ng!Pass123")
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
}

func TestGeneratePassword_PassesValidation(t *testing.T) {
	for _, length := range []int{8, 12, 32} {
		pw, err := GeneratePassword(length)
		require.NoError(t, err)
		assert.Len(t, pw, length)
		result := ValidatePassword(pw)
		assert.True(t, result.IsValid, "generated password %q failed validation: %v", pw, result.Issues)
	}
}

func TestGeneratePassword_TooShort(t *testing.T) {
	_, err := GeneratePassword(4)
	require.Error(t, err)
	var lenErr *InvalidPasswordLengthError
	require.ErrorAs(t, err, &lenErr)
}
