package utils

import (
	"testing"
	"time"

	"cedra_storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test_secret")

func TestJWT_RoundTrip(t *testing.T) {
	viewer := models.Viewer{UserID: "u1", Email: "u1@example.com", Role: models.RoleVendor, CompanyID: "S1"}

	token, err := GenerateJWT(viewer, secret, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, viewer, parsed)
}

func TestJWT_Rejected(t *testing.T) {
	token, err := GenerateJWT(models.Viewer{UserID: "u1"}, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, []byte("other"))
	assert.Error(t, err)

	expired, err := GenerateJWT(models.Viewer{UserID: "u1"}, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)

	noUser, err := GenerateJWT(models.Viewer{}, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(noUser, secret)
	assert.Error(t, err)
}
