package utils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUPIIntent(t *testing.T) {
	intent, err := UPIIntent(UPIPayee{VPA: "shop@okaxis", Name: "Cedra Store"}, decimal.RequireFromString("890"), "ORD1")
	require.NoError(t, err)

	u, err := url.Parse(intent)
	require.NoError(t, err)
	assert.Equal(t, "upi", u.Scheme)
	assert.Equal(t, "shop@okaxis", u.Query().Get("pa"))
	assert.Equal(t, "890.00", u.Query().Get("am"))
	assert.Equal(t, "INR", u.Query().Get("cu"))
	assert.Equal(t, "ORD1", u.Query().Get("tr"))
}

func TestUPIIntent_Invalid(t *testing.T) {
	_, err := UPIIntent(UPIPayee{}, decimal.RequireFromString("10"), "")
	assert.Error(t, err)

	_, err = UPIIntent(UPIPayee{VPA: "a@b"}, decimal.Zero, "")
	assert.Error(t, err)
}

func TestGenerateUPIQR(t *testing.T) {
	qr, err := GenerateUPIQR(LoadUPIPayee(), decimal.RequireFromString("99.5"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
}
