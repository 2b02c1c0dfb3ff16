package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCloudlet_ValidatesConstraints(t *testing.T) {
	_, err := NewCloudlet(CloudletSpec{ID: 1, LengthMI: 0, NumPes: 1, UtilizationPE: 1})
	assert.Error(t, err)
	_, err = NewCloudlet(CloudletSpec{ID: 1, LengthMI: 1, NumPes: 0, UtilizationPE: 1})
	assert.Error(t, err)
	_, err = NewCloudlet(CloudletSpec{ID: 1, LengthMI: 1, NumPes: 1, UtilizationPE: 0})
	assert.Error(t, err)
	_, err = NewCloudlet(CloudletSpec{ID: 1, LengthMI: 1, NumPes: 1, UtilizationPE: 1.5})
	assert.Error(t, err)
}

func TestCloudlet_DefaultState(t *testing.T) {
	c, err := NewCloudlet(CloudletSpec{ID: 1, LengthMI: 1000, NumPes: 1, UtilizationPE: 1})
	require.NoError(t, err)
	assert.Equal(t, CloudletCreated, c.State())
}

func TestCloudletRunning_DelegatesToDescriptor(t *testing.T) {
	c, err := NewCloudlet(CloudletSpec{ID: 7, LengthMI: 500, NumPes: 2, UtilizationPE: 0.5})
	require.NoError(t, err)
	cr := NewCloudletRunning(c)

	assert.Equal(t, 7, cr.NumericID())
	cr.SetState(CloudletRunningState)
	assert.Equal(t, CloudletRunningState, c.State(), "state mutation through the wrapper must be visible on the descriptor")

	cr.SetStartTime(10)
	cr.SetEndTime(20)
	assert.Equal(t, 10.0, cr.StartTime())
	assert.Equal(t, 20.0, cr.EndTime())
}

func TestCloudletStateString(t *testing.T) {
	assert.Equal(t, "SUCCEEDED", CloudletSucceeded.String())
	assert.Equal(t, "CANCELED", CloudletCanceled.String())
}
