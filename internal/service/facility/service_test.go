package facility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestFacility(t *testing.T) {
	svc := NewService(memory.NewStore().Facility)
	ctx := context.Background()

	f, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = svc.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.ID)
	assert.Equal(t, model.DefaultFacilityName, f.Name)

	_, err = svc.Update(ctx, model.FacilityForm{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	f, err = svc.Update(ctx, model.FacilityForm{Name: "HospitalCare Nairobi", EmergencyPhone: "+254711000000"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.ID)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HospitalCare Nairobi", got.Name)
	assert.Equal(t, "+254711000000", got.EmergencyPhone)
}
