package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestValidate(t *testing.T) {
	pay10 := &Terminal{Gateway: "pay10", Name: "main", PayloadID: "P1", SecretKey: "s"}
	err := pay10.Validate()
	assert.ErrorContains(t, err, "encryption_key")

	pay10.EncryptionKey = "k"
	assert.NoError(t, pay10.Validate())

	unlimit := &Terminal{Gateway: "unlimit", Name: "u"}
	assert.Equal(t, []string{"api_base", "terminal_code", "terminal_password"}, unlimit.MissingFields())

	zwitch := &Terminal{Gateway: "zwitch", Name: "z"}
	assert.NoError(t, zwitch.Validate())

	assert.Error(t, (&Terminal{Gateway: "pay10"}).Validate())
}

func TestMaskedHidesSecrets(t *testing.T) {
	term := &Terminal{
		Gateway:          "pay10",
		Name:             "main",
		PayloadID:        "P1",
		SecretKey:        "supersecret1234",
		EncryptionKey:    "0123456789abcdef",
		TerminalPassword: "pw",
		Extra:            datatypes.JSONMap{"api_key": "abcdefgh"},
	}

	view := term.Masked()
	assert.Equal(t, "****1234", view.SecretKey)
	assert.Equal(t, "****cdef", view.EncryptionKey)
	assert.Equal(t, "****", view.TerminalPassword)
	assert.Equal(t, "****efgh", view.Extra["api_key"])
	assert.Equal(t, "P1", view.PayloadID)
}
