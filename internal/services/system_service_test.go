package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateMonthlyRequired(t *testing.T) {
	systemRepo := &mockSystemRepository{required: 500}
	svc := NewSystemService(systemRepo, nil)
	ctx := context.Background()

	cfg, err := svc.UpdateMonthlyRequired(ctx, 650, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 650.0, cfg.Required)

	_, err = svc.UpdateMonthlyRequired(ctx, 0, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.UpdateMonthlyRequired(ctx, -10, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, 650.0, systemRepo.required)
}
