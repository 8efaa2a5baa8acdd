package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "", nil)

	var dest map[string]string
	err := repo.Get(context.Background(), "adjustments:default:export", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(context.Background(), "k", "v", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "adjustments:*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryNamespacesKeys(t *testing.T) {
	assert.Equal(t, "tutoring:adjustments:default:export", NewCacheRepository(nil, "", nil).key("adjustments:default:export"))
	assert.Equal(t, "staging:x", NewCacheRepository(nil, "staging", nil).key("x"))
}
