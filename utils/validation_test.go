package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"a+tag@b.co",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@no-local.com",
		"user@",
		"user@domain",
		"user @example.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("longenough"))
}

func TestValidateUserName(t *testing.T) {
	assert.Error(t, ValidateUserName(""))
	assert.Error(t, ValidateUserName("   "))
	assert.NoError(t, ValidateUserName("meera"))

	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateUserName(string(long)))
}

func TestNormalizeFilterList(t *testing.T) {
	assert.Nil(t, NormalizeFilterList(""))
	assert.Equal(t, []string{"a"}, NormalizeFilterList("a"))
	assert.Equal(t, []string{"a", "b"}, NormalizeFilterList("a,b"))
	assert.Equal(t, []string{"a", "b"}, NormalizeFilterList(" a , b "))
	assert.Equal(t, []string{"a"}, NormalizeFilterList("a,,"))
}
