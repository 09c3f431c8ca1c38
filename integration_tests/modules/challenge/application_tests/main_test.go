package challengeintegrationtests

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Black-And-White-Club/flag-hunt/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	exitCode := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	testutils.Shutdown(ctx)
	os.Exit(exitCode)
}
