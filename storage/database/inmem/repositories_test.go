package inmemdb_test

import (
	"testing"

	"github.com/trezcool/coachreports/tests"
)

func TestRepositories(t *testing.T) {
	testutil.RunRepositoryTests(t, testutil.NewMemoryRepositories)
}
