package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhoneNumber(t *testing.T) {
	assert.Nil(t, ValidatePhoneNumber("9876543210"))

	fe := ValidatePhoneNumber("")
	require.NotNil(t, fe)
	assert.Equal(t, "phoneNumber", fe.Key)
	assert.Equal(t, "Phone Number is required.", fe.Message)

	for _, bad := range []string{"12345", "98765432100", "98765abcde", "+919876543"} {
		fe := ValidatePhoneNumber(bad)
		require.NotNil(t, fe, "expected rejection for %q", bad)
		assert.Equal(t, "Phone Number should have 10 digits.", fe.Message)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.Nil(t, ValidateEmail(""))
	assert.Nil(t, ValidateEmail("asha@example.com"))

	for _, bad := range []string{"not-an-email", "a@b", "spaces in@mail.com"} {
		fe := ValidateEmail(bad)
		require.NotNil(t, fe, "expected rejection for %q", bad)
		assert.Equal(t, "email", fe.Key)
	}
}

func TestRequireField(t *testing.T) {
	assert.Nil(t, RequireField("name", "City Pharmacy", "Pharmacy Name"))

	fe := RequireField("name", "   ", "Pharmacy Name")
	require.NotNil(t, fe)
	assert.Equal(t, "name", fe.Key)
	assert.Equal(t, "Pharmacy Name is required", fe.Message)
}

func TestCollectErrors(t *testing.T) {
	assert.Empty(t, CollectErrors(nil, nil))

	out := CollectErrors(
		ValidatePhoneNumber(""),
		nil,
		ValidateEmail("bad"),
	)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"phoneNumber", "email"}, []string{out[0].Key, out[1].Key})
}
