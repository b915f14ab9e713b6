package orders

import (
	"testing"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_Mapping(t *testing.T) {
	cases := map[models.OrderStatus]int{
		models.StatusPendingPayment: 0,
		models.StatusConfirmed:      0,
		models.StatusProcessing:     1,
		models.StatusPacked:         2,
		models.StatusHandedCourier:  3,
		models.StatusInTransit:      4,
		models.StatusDelivered:      5,
		models.StatusCancelled:      -1,
		models.StatusReturned:       -1,
	}
	for status, stage := range cases {
		assert.Equal(t, stage, Stage(status), status)
	}
}

func TestSetStatus_IsPermissive(t *testing.T) {
	order := models.Order{ID: "o1", Status: models.StatusPacked}
	now := time.Now()

	cancelled, err := SetStatus(order, models.StatusCancelled, now)
	require.NoError(t, err)
	assert.Equal(t, -1, Stage(cancelled.Status))

	// pas de verrou vers l'avant : une commande annulée peut repartir
	reopened, err := SetStatus(cancelled, models.StatusProcessing, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, reopened.Status)
	assert.Equal(t, 1, Stage(reopened.Status))
}

func TestSetStatus_RejectsUnknown(t *testing.T) {
	order := models.Order{ID: "o1", Status: models.StatusPacked}

	unchanged, err := SetStatus(order, "Teleported", time.Now())
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, models.StatusPacked, unchanged.Status)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("shipment in transit")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, status)

	status, err = ParseStatus("paid")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, status)

	_, err = ParseStatus("lost")
	assert.True(t, apperr.IsValidation(err))
}

func TestIsForward(t *testing.T) {
	assert.True(t, IsForward(models.StatusConfirmed, models.StatusProcessing))
	assert.True(t, IsForward(models.StatusPacked, models.StatusCancelled))
	assert.False(t, IsForward(models.StatusDelivered, models.StatusProcessing))
	assert.False(t, IsForward(models.StatusCancelled, models.StatusProcessing))
	assert.False(t, IsForward(models.StatusCancelled, models.StatusReturned))
}

func TestTimeline_ReachedIsPrefix(t *testing.T) {
	for _, status := range models.AllStatuses {
		steps := Timeline(status)
		require.Len(t, steps, FinalStage+1)

		seenUnreached := false
		for _, step := range steps {
			if !step.Reached {
				seenUnreached = true
				continue
			}
			assert.False(t, seenUnreached, "étape atteinte après une étape non atteinte pour %s", status)
		}
	}
}

func TestTimeline_Current(t *testing.T) {
	steps := Timeline(models.StatusPacked)

	assert.True(t, steps[2].Current)
	assert.True(t, steps[2].Reached)
	assert.False(t, steps[3].Reached)

	pending := Timeline(models.StatusPendingPayment)
	assert.Equal(t, models.StatusPendingPayment, pending[0].Status)
	assert.True(t, pending[0].Current)

	for _, step := range Timeline(models.StatusCancelled) {
		assert.False(t, step.Reached)
	}
}
