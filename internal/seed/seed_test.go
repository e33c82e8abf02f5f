package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/examportal/internal/app/repositories/memory"
	"github.com/yigit/examportal/internal/app/services"
	"github.com/yigit/examportal/internal/pkg/apperrors"
	"github.com/yigit/examportal/internal/pkg/logger"
	"github.com/yigit/examportal/internal/pkg/validation"
)

func TestCreateDefaultData_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := services.NewImportService(store, validation.New(), logger.Nop(), 0)

	require.NoError(t, CreateDefaultData(ctx, svc, logger.Nop()))
	first := store.Snapshot()
	assert.Len(t, first.Colleges, 2)
	assert.Len(t, first.Departments, 4)

	require.NoError(t, CreateDefaultData(ctx, svc, logger.Nop()))
	assert.Equal(t, first, store.Snapshot())
}

func TestCreateDefaultData_ReportsRejection(t *testing.T) {
	store := memory.NewStore()
	store.FailNextCommit(errors.New("read-only replica"))
	svc := services.NewImportService(store, validation.New(), logger.Nop(), 0)

	err := CreateDefaultData(context.Background(), svc, logger.Nop())
	assert.True(t, errors.Is(err, apperrors.ErrImportRejected))
}
