package database

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	d, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, Init(d, quiet))
}

func TestWithRetryPassesThroughSuccess(t *testing.T) {
	setup(t)

	calls := 0
	err := WithRetry(func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryPassesThroughOtherErrors(t *testing.T) {
	setup(t)

	boom := errors.New("boom")
	calls := 0
	err := WithRetry(func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromTransientLock(t *testing.T) {
	setup(t)
	t.Setenv("DB_RETRY_DELAY_MS", "1")

	calls := 0
	err := WithRetry(func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("database is locked")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetrySurfacesBusyAfterBudget(t *testing.T) {
	setup(t)
	t.Setenv("DB_RETRY_DELAY_MS", "1")
	t.Setenv("DB_MAX_RETRIES", "4")

	calls := 0
	err := WithRetry(func() error {
		calls++
		return fmt.Errorf("database is locked")
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 4, calls)
}
